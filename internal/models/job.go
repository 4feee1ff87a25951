// internal/models/job.go
package models

// JobSource identifies the sourcing level a job came from.
type JobSource string

const (
	JobSourceCache       JobSource = "redis_cache"
	JobSourceIndex       JobSource = "search_index"
	JobSourceExternalAPI JobSource = "external_api"
	JobSourceRequest     JobSource = "request"
)

type Job struct {
	ID       string    `json:"id,omitempty"`
	Title    string    `json:"title"`
	Company  string    `json:"company"`
	Location string    `json:"location"`
	JD       string    `json:"jd"`
	Link     string    `json:"link"`
	Skills   []string  `json:"skills,omitempty"`
	Source   JobSource `json:"source"`
}

// JobMatch is a scored job as returned to clients.
type JobMatch struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Link    string `json:"link"`
	Score   int    `json:"score"`
}
