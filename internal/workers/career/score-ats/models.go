// internal/workers/career/score-ats/models.go
package scoreats

import "nexus-talent/internal/models"

type Input struct {
	ResumeText string       `json:"resumeText"`
	Jobs       []models.Job `json:"jobs"`
}

// Output carries the overall score, the scored jobs best first and the job
// the score came from.
type Output struct {
	Score   int               `json:"score"`
	TopJobs []models.JobMatch `json:"topJobs"`
	BestJob *models.Job       `json:"bestJob,omitempty"`
	Error   string            `json:"error,omitempty"`
}
