// internal/models/resume.go
package models

import "strings"

// DefaultJobTitle is the target role when neither the request nor the resume
// names one.
const DefaultJobTitle = "General"

// ResumeData is the structured view of a resume.
type ResumeData struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Headline        string   `json:"headline"`
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience_years"`
	Summary         string   `json:"summary"`
}

// ParseSource records which extractor produced a ResumeData.
type ParseSource string

const (
	ParseSourceLLM       ParseSource = "llm"
	ParseSourceHeuristic ParseSource = "heuristic"
)

// TargetTitle returns the requested title, else the headline, else the first
// skill, else DefaultJobTitle.
func (r ResumeData) TargetTitle(requested string) string {
	if t := strings.TrimSpace(requested); t != "" {
		return t
	}
	if h := strings.TrimSpace(r.Headline); h != "" {
		return h
	}
	if len(r.Skills) > 0 {
		return r.Skills[0]
	}
	return DefaultJobTitle
}
