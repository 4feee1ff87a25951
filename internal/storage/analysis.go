// internal/storage/analysis.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS career_analyses (
	id                    UUID PRIMARY KEY,
	job_title             TEXT NOT NULL,
	location              TEXT NOT NULL,
	score                 INTEGER NOT NULL,
	recommendation_status TEXT NOT NULL DEFAULT '',
	priority_skill        TEXT NOT NULL DEFAULT '',
	result                JSONB NOT NULL,
	created_at            TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS career_analyses_created_at_idx ON career_analyses (created_at DESC);`

// AnalysisStore keeps the history of career analyses in PostgreSQL.
type AnalysisStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewAnalysisStore(db *sql.DB, log logger.Logger) *AnalysisStore {
	return &AnalysisStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "analysis-store"}),
	}
}

// EnsureSchema creates the analyses table if it does not exist.
func (s *AnalysisStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(fmt.Errorf("ensure schema: %w", err))
	}
	return nil
}

// Save inserts an analysis. Saving the same ID twice keeps the first row.
func (s *AnalysisStore) Save(ctx context.Context, jobTitle, location string, analysis *models.CareerAnalysisResponse) error {
	result, err := json.Marshal(analysis)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(fmt.Errorf("marshal analysis: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO career_analyses (
			id, job_title, location, score,
			recommendation_status, priority_skill, result, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		analysis.ID,
		jobTitle,
		location,
		analysis.Score,
		analysis.RecommendationStatus,
		analysis.PrioritySkill,
		result,
		analysis.CreatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	s.logger.Debug("analysis stored", map[string]interface{}{
		"analysisId": analysis.ID,
		"score":      analysis.Score,
	})
	return nil
}

// Get returns the stored response for id. Ids that are not UUIDs cannot
// exist and are reported as not found without a query.
func (s *AnalysisStore) Get(ctx context.Context, id string) (*models.CareerAnalysisResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewAnalysisNotFoundError(id)
	}
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM career_analyses WHERE id = $1`, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewAnalysisNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get_analysis", err)
	}

	var analysis models.CareerAnalysisResponse
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get_analysis", fmt.Errorf("decode result: %w", err))
	}
	return &analysis, nil
}

// ListRecent returns the newest analyses first. limit is clamped to
// [1, MaxListLimit]; zero or less means DefaultListLimit.
func (s *AnalysisStore) ListRecent(ctx context.Context, limit int) ([]models.AnalysisSummary, error) {
	limit = ClampLimit(limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_title, location, score, recommendation_status, created_at
		FROM career_analyses
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_analyses", err)
	}
	defer rows.Close()

	out := make([]models.AnalysisSummary, 0, limit)
	for rows.Next() {
		var a models.AnalysisSummary
		if err := rows.Scan(&a.ID, &a.JobTitle, &a.Location, &a.Score, &a.Status, &a.CreatedAt); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list_analyses", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_analyses", err)
	}
	return out, nil
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}
