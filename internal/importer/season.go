package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkoziy/paddock/internal/models"
	"github.com/mkoziy/paddock/internal/provider"
)

// SeasonOrder is the order session types are attempted within an event.
var SeasonOrder = []models.SessionType{
	models.SessionS,
	models.SessionFP1,
	models.SessionFP2,
	models.SessionFP3,
	models.SessionQ,
	models.SessionSQ,
	models.SessionR,
}

// SessionFailure is one (event, type) the season import could not load.
type SessionFailure struct {
	Event string
	Type  models.SessionType
	Err   error
}

// SeasonSummary counts the outcome of a season import.
type SeasonSummary struct {
	Year         int
	Events       int
	Imported     int
	NotFound     int
	Failed       int
	LapsInserted int
	LapsSkipped  int
	Failures     []SessionFailure
}

// Status maps the summary onto an import run status.
func (s SeasonSummary) Status() models.RunStatus {
	switch {
	case s.Failed == 0:
		return models.RunSucceeded
	case s.Imported > 0:
		return models.RunPartial
	default:
		return models.RunFailed
	}
}

// SeasonImporter walks every event of a year and imports each session type.
type SeasonImporter struct {
	sessions *SessionImporter
	provider provider.Provider
}

// NewSeasonImporter creates a season importer on top of sessions.
func NewSeasonImporter(sessions *SessionImporter, p provider.Provider) *SeasonImporter {
	return &SeasonImporter{sessions: sessions, provider: p}
}

// ImportSeason imports every (event, type) of year. A failed session is
// logged and counted; only a calendar failure or cancellation stops the loop.
func (se *SeasonImporter) ImportSeason(ctx context.Context, year int) (SeasonSummary, error) {
	summary := SeasonSummary{Year: year}

	events, err := se.provider.FetchEventCalendar(ctx, year, true)
	if err != nil {
		return summary, fmt.Errorf("fetch calendar %d: %w", year, err)
	}
	summary.Events = len(events)
	slog.Info("season import started", "year", year, "events", len(events))

	for _, event := range events {
		for _, typ := range SeasonOrder {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			report, err := se.sessions.ImportSession(ctx, year, event, string(typ))
			if err == nil {
				summary.Imported++
				summary.LapsInserted += report.LapsInserted
				summary.LapsSkipped += report.LapsSkipped
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}

			if errors.Is(err, provider.ErrSessionNotFound) {
				summary.NotFound++
			} else {
				summary.Failed++
				summary.Failures = append(summary.Failures, SessionFailure{Event: event, Type: typ, Err: err})
			}
			slog.Warn("season import: session skipped", "year", year, "event", event, "type", typ, "err", err)
		}
	}

	slog.Info("season import finished",
		"year", year, "imported", summary.Imported, "not_found", summary.NotFound,
		"failed", summary.Failed, "laps", summary.LapsInserted)
	return summary, nil
}
