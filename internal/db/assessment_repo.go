package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"biotwin/internal/types"
)

// AssessmentRepository persists assessment snapshots. Scores are kept in
// columns for querying; the full result is stored in the payload column.
type AssessmentRepository struct {
	db DBTX
}

// NewAssessmentRepository creates a new AssessmentRepository.
func NewAssessmentRepository(db DBTX) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Create inserts a snapshot. The assessment must carry an ID and a UserID.
func (r *AssessmentRepository) Create(ctx context.Context, a *types.Assessment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO assessments (
			id, user_id, bio_score, adjusted_score, longevity_score, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID,
		a.UserID,
		a.BioScore,
		a.Adjusted.AdjustedScore,
		a.LongevityScore,
		*a,
		a.CreatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create assessment", err)
	}
	return nil
}

// GetLatest returns the newest snapshot for a user.
// Returns ErrCodeNotFoundAssessment if the user has none.
func (r *AssessmentRepository) GetLatest(ctx context.Context, userID string) (*types.Assessment, error) {
	var a types.Assessment
	err := r.db.QueryRow(ctx,
		`SELECT payload FROM assessments
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundAssessment, "assessment not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve assessment", err)
	}
	return &a, nil
}
