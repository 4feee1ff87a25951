// internal/workers/career/parse-resume/models.go
package parseresume

import "nexus-talent/internal/models"

// Input carries either resume text or an uploaded file. File bytes travel
// base64-encoded in job variables.
type Input struct {
	Resume   string `json:"resume,omitempty"`
	File     []byte `json:"resumeFile,omitempty"`
	FileName string `json:"resumeFileName,omitempty"`
	MimeType string `json:"resumeMimeType,omitempty"`
	JobTitle string `json:"jobTitle,omitempty"`
}

// Output.JobTitle is the requested title resolved against the parsed resume;
// downstream tasks read it as the jobTitle variable.
type Output struct {
	ResumeData  models.ResumeData  `json:"resumeData"`
	ResumeText  string             `json:"resumeText"`
	ParseSource models.ParseSource `json:"parseSource"`
	JobTitle    string             `json:"jobTitle"`
}
