// internal/workers/career/build-learning-path/models.go
package buildlearningpath

import "nexus-talent/internal/models"

type Input struct {
	Skills []string `json:"pathSkills"`
}

type Output struct {
	LearningPath []models.LearningStep `json:"learningPath"`
	CacheHit     bool                  `json:"cacheHit,omitempty"`
}
