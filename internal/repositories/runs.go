package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/mkoziy/paddock/internal/models"
)

// CreateImportRun stores a new run record.
func CreateImportRun(ctx context.Context, db bun.IDB, run *models.ImportRun) error {
	_, err := db.NewInsert().Model(run).Exec(ctx)
	return classify("create import run", err)
}

// FinishImportRun writes the outcome columns of a run.
func FinishImportRun(ctx context.Context, db bun.IDB, run *models.ImportRun) error {
	_, err := db.NewUpdate().
		Model(run).
		Column("end_time", "status", "sessions_ok", "sessions_failed", "laps_inserted", "laps_skipped", "error_log").
		WherePK().
		Exec(ctx)
	return classify("finish import run", err)
}

// ListImportRuns returns the most recent runs first.
func ListImportRuns(ctx context.Context, db bun.IDB, limit int) ([]models.ImportRun, error) {
	runs := make([]models.ImportRun, 0)
	err := db.NewSelect().
		Model(&runs).
		Order("ir.start_time DESC", "ir.id DESC").
		Limit(limit).
		Scan(ctx)
	return runs, classify("list import runs", err)
}
