package db

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"

	"biotwin/internal/types"
)

// HealthRecordRepository stores one wearable record per user per day.
type HealthRecordRepository struct {
	db DBTX
}

// NewHealthRecordRepository creates a new HealthRecordRepository.
func NewHealthRecordRepository(db DBTX) *HealthRecordRepository {
	return &HealthRecordRepository{db: db}
}

const upsertHealthRecordSQL = `INSERT INTO health_records (
		user_id, recorded_on, steps, resting_heart_rate, sleep_hours,
		active_calories, distance_km, hrv_ms, source
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (user_id, recorded_on) DO UPDATE SET
		steps = EXCLUDED.steps,
		resting_heart_rate = EXCLUDED.resting_heart_rate,
		sleep_hours = EXCLUDED.sleep_hours,
		active_calories = EXCLUDED.active_calories,
		distance_km = EXCLUDED.distance_km,
		hrv_ms = EXCLUDED.hrv_ms,
		source = EXCLUDED.source,
		updated_at = NOW()`

// Insert upserts records for a user. A second record for the same day
// replaces the first. The upserts are sent as one batch inside a
// transaction: either every record is stored or none is.
func (r *HealthRecordRepository) Insert(ctx context.Context, userID string, source types.RecordSource, records []types.HealthRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to begin health record transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertHealthRecordSQL,
			userID,
			dayOf(rec.Timestamp),
			rec.Steps,
			rec.RestingHeartRate,
			rec.SleepHours,
			rec.ActiveCalories,
			rec.Distance,
			rec.HRVVariability,
			string(source),
		)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range records {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return types.NewAppError(types.ErrCodeInternalDB,
				fmt.Sprintf("failed to insert health record %d", i), err)
		}
	}
	if err := results.Close(); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert health records", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to commit health records", err)
	}
	return nil
}

// ListRecent returns up to days records ending at asOf, oldest first.
func (r *HealthRecordRepository) ListRecent(ctx context.Context, userID string, asOf time.Time, days int) ([]types.HealthRecord, error) {
	since := dayOf(asOf).AddDate(0, 0, -(days - 1))

	rows, err := r.db.Query(ctx,
		`SELECT steps, resting_heart_rate, sleep_hours, active_calories,
		        distance_km, hrv_ms, recorded_on
		 FROM health_records
		 WHERE user_id = $1 AND recorded_on >= $2 AND recorded_on <= $3
		 ORDER BY recorded_on DESC
		 LIMIT $4`,
		userID, since, dayOf(asOf), days,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list health records", err)
	}
	defer rows.Close()

	var out []types.HealthRecord
	for rows.Next() {
		var rec types.HealthRecord
		if err := rows.Scan(
			&rec.Steps,
			&rec.RestingHeartRate,
			&rec.SleepHours,
			&rec.ActiveCalories,
			&rec.Distance,
			&rec.HRVVariability,
			&rec.Timestamp,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan health record", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating health records", err)
	}

	slices.Reverse(out)
	return out, nil
}
