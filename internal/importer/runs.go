package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/mkoziy/paddock/internal/models"
	"github.com/mkoziy/paddock/internal/repositories"
)

// Runs records an import_runs row around each import. Rows are written
// outside the session transactions so a rolled-back session still leaves a
// failed run behind.
type Runs struct {
	db       bun.IDB
	snapshot string
	now      func() time.Time
}

// NewRuns creates a run recorder. snapshot is stored verbatim on each run.
func NewRuns(db bun.IDB, snapshot string) *Runs {
	return &Runs{db: db, snapshot: snapshot, now: time.Now}
}

// Session imports one session and records the run.
func (r *Runs) Session(ctx context.Context, si *SessionImporter, year int, eventName, sessionType string) (SessionReport, *models.ImportRun, error) {
	run, err := r.start(ctx, models.ScopeSession, year, &eventName, &sessionType)
	if err != nil {
		return SessionReport{}, nil, err
	}

	report, importErr := si.ImportSession(ctx, year, eventName, sessionType)
	run.LapsInserted = report.LapsInserted
	run.LapsSkipped = report.LapsSkipped
	if importErr != nil {
		run.SessionsFailed = 1
		run.Status = models.RunFailed
		run.ErrorLog = strPtr(importErr.Error())
	} else {
		run.SessionsOK = 1
		run.Status = models.RunSucceeded
	}
	r.finish(ctx, run)
	return report, run, importErr
}

// Season imports a whole year and records the run.
func (r *Runs) Season(ctx context.Context, se *SeasonImporter, year int) (SeasonSummary, *models.ImportRun, error) {
	run, err := r.start(ctx, models.ScopeSeason, year, nil, nil)
	if err != nil {
		return SeasonSummary{}, nil, err
	}

	summary, importErr := se.ImportSeason(ctx, year)
	run.SessionsOK = summary.Imported
	run.SessionsFailed = summary.Failed
	run.LapsInserted = summary.LapsInserted
	run.LapsSkipped = summary.LapsSkipped
	run.Status = summary.Status()

	var lines []string
	for _, f := range summary.Failures {
		lines = append(lines, fmt.Sprintf("%s %s: %v", f.Event, f.Type, f.Err))
	}
	if importErr != nil {
		run.Status = models.RunFailed
		lines = append(lines, importErr.Error())
	}
	if len(lines) > 0 {
		run.ErrorLog = strPtr(strings.Join(lines, "\n"))
	}

	r.finish(ctx, run)
	return summary, run, importErr
}

func (r *Runs) start(ctx context.Context, scope models.RunScope, year int, event, typ *string) (*models.ImportRun, error) {
	run := &models.ImportRun{
		RunID:       uuid.NewString(),
		Scope:       scope,
		Year:        year,
		EventName:   event,
		SessionType: typ,
		StartTime:   r.now().UTC(),
		Status:      models.RunRunning,
	}
	if r.snapshot != "" {
		run.ConfigSnapshot = strPtr(r.snapshot)
	}
	if err := repositories.CreateImportRun(ctx, r.db, run); err != nil {
		return nil, fmt.Errorf("record import run: %w", err)
	}
	return run, nil
}

// finish stores the outcome. A cancelled import still gets its row closed.
func (r *Runs) finish(ctx context.Context, run *models.ImportRun) {
	end := r.now().UTC()
	run.EndTime = &end

	if err := repositories.FinishImportRun(context.WithoutCancel(ctx), r.db, run); err != nil {
		slog.Warn("import run not finalized", "run_id", run.RunID, "err", err)
	}
}

func strPtr(s string) *string {
	return &s
}
