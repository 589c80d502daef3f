package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/mkoziy/paddock/internal/models"
)

// insertBatch keeps bulk inserts under SQLite's bound parameter limit.
const insertBatch = 200

// InsertLaps bulk-inserts laps and returns the number written.
func InsertLaps(ctx context.Context, db bun.IDB, laps []*models.Lap) (int, error) {
	written := 0
	for start := 0; start < len(laps); start += insertBatch {
		end := min(start+insertBatch, len(laps))
		chunk := laps[start:end]
		if _, err := db.NewInsert().Model(&chunk).Exec(ctx); err != nil {
			return written, classify("insert laps", err)
		}
		written += len(chunk)
	}
	return written, nil
}

// InsertPitStops bulk-inserts pit stops and returns the number written.
func InsertPitStops(ctx context.Context, db bun.IDB, stops []*models.PitStop) (int, error) {
	written := 0
	for start := 0; start < len(stops); start += insertBatch {
		end := min(start+insertBatch, len(stops))
		chunk := stops[start:end]
		if _, err := db.NewInsert().Model(&chunk).Exec(ctx); err != nil {
			return written, classify("insert pit stops", err)
		}
		written += len(chunk)
	}
	return written, nil
}

// DeleteSessionLaps removes the laps and pit stops of a session and reports
// how many rows of each were removed.
func DeleteSessionLaps(ctx context.Context, db bun.IDB, sessionID int64) (int64, int64, error) {
	pitRes, err := db.NewDelete().
		Model((*models.PitStop)(nil)).
		Where("session_id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return 0, 0, classify("delete pit stops", err)
	}
	lapRes, err := db.NewDelete().
		Model((*models.Lap)(nil)).
		Where("session_id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return 0, 0, classify("delete laps", err)
	}

	pits, _ := pitRes.RowsAffected()
	laps, _ := lapRes.RowsAffected()
	return laps, pits, nil
}

// CountSessionLaps returns the number of stored laps of a session.
func CountSessionLaps(ctx context.Context, db bun.IDB, sessionID int64) (int, error) {
	n, err := db.NewSelect().
		Model((*models.Lap)(nil)).
		Where("session_id = ?", sessionID).
		Count(ctx)
	return n, classify("count laps", err)
}
