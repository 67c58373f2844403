package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"biotwin/internal/types"
)

// LabResultRepository stores blood panels as JSONB documents.
type LabResultRepository struct {
	db DBTX
}

// NewLabResultRepository creates a new LabResultRepository.
func NewLabResultRepository(db DBTX) *LabResultRepository {
	return &LabResultRepository{db: db}
}

// Insert records one panel for a user, drawn at b.Timestamp.
func (r *LabResultRepository) Insert(ctx context.Context, userID string, b types.BiomarkerData) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO lab_results (user_id, drawn_at, panel) VALUES ($1, $2, $3)`,
		userID, b.Timestamp, b,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert lab result", err)
	}
	return nil
}

// Latest returns the most recently drawn panel, or nil when the user has none.
func (r *LabResultRepository) Latest(ctx context.Context, userID string) (*types.BiomarkerData, error) {
	var panel types.BiomarkerData
	err := r.db.QueryRow(ctx,
		`SELECT panel FROM lab_results
		 WHERE user_id = $1
		 ORDER BY drawn_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&panel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve lab result", err)
	}
	return &panel, nil
}
