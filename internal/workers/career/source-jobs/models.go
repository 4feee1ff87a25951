// internal/workers/career/source-jobs/models.go
package sourcejobs

import "nexus-talent/internal/models"

type Input struct {
	JobTitle       string   `json:"jobTitle"`
	Location       string   `json:"location"`
	Skills         []string `json:"skills"`
	JobDescription string   `json:"jobDescription,omitempty"`
}

type Output struct {
	Jobs       []models.Job     `json:"jobs"`
	DataSource models.JobSource `json:"dataSource,omitempty"`
	Error      string           `json:"error,omitempty"`
}
