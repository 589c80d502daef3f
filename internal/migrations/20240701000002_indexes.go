package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"CREATE INDEX IF NOT EXISTS idx_events_season ON events(season_year)",
			"CREATE INDEX IF NOT EXISTS idx_drivers_season ON drivers(season_year)",
			"CREATE INDEX IF NOT EXISTS idx_laps_session_lap ON laps(session_id, lap_number)",
			"CREATE INDEX IF NOT EXISTS idx_laps_driver ON laps(driver_id)",
			"CREATE INDEX IF NOT EXISTS idx_pit_stops_session ON pit_stops(session_id)",
			"CREATE INDEX IF NOT EXISTS idx_import_runs_start ON import_runs(start_time DESC)",
		}

		for _, idx := range indexes {
			if _, err := db.ExecContext(ctx, idx); err != nil {
				return err
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"DROP INDEX IF EXISTS idx_events_season",
			"DROP INDEX IF EXISTS idx_drivers_season",
			"DROP INDEX IF EXISTS idx_laps_session_lap",
			"DROP INDEX IF EXISTS idx_laps_driver",
			"DROP INDEX IF EXISTS idx_pit_stops_session",
			"DROP INDEX IF EXISTS idx_import_runs_start",
		}

		for _, idx := range indexes {
			if _, err := db.ExecContext(ctx, idx); err != nil {
				return err
			}
		}

		return nil
	})
}
