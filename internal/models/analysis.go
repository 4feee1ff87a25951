// internal/models/analysis.go
package models

import "time"

const (
	StatusPerfectMatch   = "Perfect Match"
	StatusGapsIdentified = "Gaps Identified"
)

// AnalyzeRequest is the payload accepted by the analysis API.
type AnalyzeRequest struct {
	Resume         string `json:"resume"`
	JobTitle       string `json:"job_title,omitempty"`
	Location       string `json:"location,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
	NotifyEmail    string `json:"notify_email,omitempty"`
}

// SkillGaps is the gap analysis contract. The zero value marshals to {}.
type SkillGaps struct {
	HardSkills         []string `json:"hard_skills,omitempty"`
	SoftSkills         []string `json:"soft_skills,omitempty"`
	RequiredExperience string   `json:"required_experience,omitempty"`
	PriorityFocus      string   `json:"priority_focus,omitempty"`
}

// All returns hard skills followed by soft skills.
func (g *SkillGaps) All() []string {
	if g == nil {
		return nil
	}
	out := make([]string, 0, len(g.HardSkills)+len(g.SoftSkills))
	out = append(out, g.HardSkills...)
	return append(out, g.SoftSkills...)
}

type LearningStep struct {
	Skill         string   `json:"skill"`
	ResourceURL   *string  `json:"resource_url"`
	Title         string   `json:"title"`
	Milestones    []string `json:"milestones"`
	EstimatedTime string   `json:"estimated_time"`
}

// CareerAnalysisResponse is the result of one run of the career graph.
// MissingSkills is nil for a perfect match and empty when gap analysis failed.
type CareerAnalysisResponse struct {
	ID                   string         `json:"id"`
	Score                int            `json:"score"`
	TopJobs              []JobMatch     `json:"top_jobs"`
	MissingSkills        *SkillGaps     `json:"missing_skills"`
	LearningPath         []LearningStep `json:"learning_path"`
	RecommendationStatus string         `json:"recommendation_status,omitempty"`
	PrioritySkill        string         `json:"priority_skill,omitempty"`
	Insights             string         `json:"insights,omitempty"`
	Error                string         `json:"error,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
}

// AnalysisSummary is a row of the analysis history listing.
type AnalysisSummary struct {
	ID        string    `json:"id"`
	JobTitle  string    `json:"job_title"`
	Location  string    `json:"location"`
	Score     int       `json:"score"`
	Status    string    `json:"recommendation_status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
