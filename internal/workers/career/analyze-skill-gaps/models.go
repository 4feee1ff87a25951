// internal/workers/career/analyze-skill-gaps/models.go
package analyzeskillgaps

import "nexus-talent/internal/models"

type Input struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
	Score          int    `json:"score"`
}

// Output.MissingSkills is nil for a perfect match and empty when the model
// failed. PathSkills is what the learning path should cover in every case.
type Output struct {
	MissingSkills        *models.SkillGaps `json:"missingSkills"`
	RecommendationStatus string            `json:"recommendationStatus,omitempty"`
	PrioritySkill        string            `json:"prioritySkill,omitempty"`
	PathSkills           []string          `json:"pathSkills"`
	Error                string            `json:"error,omitempty"`
}
