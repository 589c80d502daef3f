package migrations

import (
	"context"
	"fmt"
	"testing"

	"github.com/mkoziy/paddock/internal/database"
)

func TestRunMigrationsCreatesSchema(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(ctx, database.Config{DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())})
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	// Second run is a no-op.
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("RunMigrations again: %v", err)
	}

	for _, table := range []string{"seasons", "events", "sessions", "drivers", "laps", "pit_stops", "import_runs"} {
		var n int
		if err := db.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n); err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if n != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO events (season_year, round_number, name, country, circuit, event_date) VALUES (1900, 1, 'x', 'x', 'x', '1900-01-01')"); err == nil {
		t.Fatalf("expected foreign key violation for unknown season")
	}

	if err := Rollback(ctx, db); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'laps'").Scan(&n); err != nil {
		t.Fatalf("lookup laps: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected laps table dropped after rollback")
	}
}
