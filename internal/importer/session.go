// Package importer loads provider sessions into the relational schema.
package importer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/mkoziy/paddock/internal/metrics"
	"github.com/mkoziy/paddock/internal/models"
	"github.com/mkoziy/paddock/internal/normalize"
	"github.com/mkoziy/paddock/internal/provider"
	"github.com/mkoziy/paddock/internal/repositories"
	"github.com/mkoziy/paddock/internal/telemetry"
)

// Options tune the session importer.
type Options struct {
	// ReplaceLaps deletes the laps and pit stops already stored for the
	// session before inserting. Without it a re-import appends duplicates.
	ReplaceLaps bool `koanf:"replace_laps" yaml:"replace_laps"`
}

// SessionReport summarizes one committed session import.
type SessionReport struct {
	Year             int
	Event            string
	Type             models.SessionType
	SessionID        int64
	LapsInserted     int
	LapsSkipped      int
	LapsReplaced     int
	PitStops         int
	TelemetryMissing int
	Elapsed          time.Duration
}

// SessionImporter imports one session per call inside a single transaction.
type SessionImporter struct {
	db       *bun.DB
	provider provider.Provider
	metrics  *metrics.Manager
	opts     Options
}

// NewSessionImporter creates a session importer. m may be nil.
func NewSessionImporter(db *bun.DB, p provider.Provider, m *metrics.Manager, opts Options) *SessionImporter {
	return &SessionImporter{db: db, provider: p, metrics: m, opts: opts}
}

// ImportSession fetches one session and writes season, event, session,
// drivers, laps and pit stops atomically. Failures are returned as
// *SessionError.
func (si *SessionImporter) ImportSession(ctx context.Context, year int, eventName, sessionType string) (SessionReport, error) {
	start := time.Now()
	report := SessionReport{Year: year, Event: eventName, Type: models.SessionType(sessionType)}

	fail := func(err error) (SessionReport, error) {
		status := metrics.StatusFailed
		if errors.Is(err, provider.ErrSessionNotFound) {
			status = metrics.StatusNotFound
		}
		si.metrics.SessionDone(status, time.Since(start))
		return report, &SessionError{Year: year, Event: eventName, Type: sessionType, Err: err}
	}

	data, err := si.provider.FetchSession(ctx, year, eventName, sessionType)
	if err != nil {
		return fail(err)
	}
	if data.Event.Name != "" {
		report.Event = data.Event.Name
	}
	if data.Session.Name != "" {
		report.Type = provider.SessionType(data.Session.Name)
	}

	summaries := si.summarizeTelemetry(ctx, data)

	err = si.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return si.write(ctx, tx, year, data, summaries, &report)
	})
	if err != nil {
		return fail(err)
	}

	report.Elapsed = time.Since(start)
	si.metrics.SessionDone(metrics.StatusOK, report.Elapsed)
	si.metrics.LapsWritten(report.LapsInserted, report.LapsSkipped, report.PitStops, report.TelemetryMissing)

	slog.Info("session imported",
		"year", year, "event", report.Event, "type", report.Type,
		"laps", report.LapsInserted, "skipped", report.LapsSkipped,
		"pit_stops", report.PitStops, "elapsed", report.Elapsed.Round(time.Millisecond))
	return report, nil
}

func (si *SessionImporter) write(ctx context.Context, tx bun.Tx, year int, data *provider.SessionData, summaries []telemetry.Summary, report *SessionReport) error {
	if err := repositories.UpsertSeason(ctx, tx, year); err != nil {
		return err
	}

	eventID, err := repositories.UpsertEvent(ctx, tx, &models.Event{
		SeasonYear:  year,
		RoundNumber: data.Event.RoundNumber,
		Name:        data.Event.Name,
		Country:     data.Event.Country,
		Circuit:     data.Event.Location,
		EventDate:   data.Event.Date,
	})
	if err != nil {
		return err
	}

	sessionID, err := repositories.UpsertSession(ctx, tx, eventID, report.Type, data.Session.Date)
	if err != nil {
		return err
	}
	report.SessionID = sessionID

	if si.opts.ReplaceLaps {
		removed, _, err := repositories.DeleteSessionLaps(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		report.LapsReplaced = int(removed)
	}

	driverIDs, err := repositories.ResolveDrivers(ctx, tx, year, driversFromResults(data.Results))
	if err != nil {
		return err
	}

	laps := make([]*models.Lap, 0, len(data.Laps))
	for i, l := range data.Laps {
		driverID, ok := driverIDs[normalizeCode(l.DriverCode)]
		if !ok {
			report.LapsSkipped++
			continue
		}
		sum := summaries[i]
		if sum.Empty() {
			report.TelemetryMissing++
		}
		laps = append(laps, &models.Lap{
			SessionID:       sessionID,
			DriverID:        driverID,
			LapNumber:       l.LapNumber,
			LapTime:         normalize.SecondsToMillis(l.LapTime),
			Sector1:         normalize.SecondsToMillis(l.Sector1),
			Sector2:         normalize.SecondsToMillis(l.Sector2),
			Sector3:         normalize.SecondsToMillis(l.Sector3),
			Compound:        models.NormalizeCompound(l.Compound),
			TireLife:        normalize.ToSafeIntPtr(l.TyreLife),
			Position:        normalize.ToSafeIntPtr(l.Position),
			TopSpeed:        sum.TopSpeed,
			FullThrottlePct: sum.FullThrottlePct,
			BrakeCount:      sum.BrakeCount,
		})
	}
	if report.LapsInserted, err = repositories.InsertLaps(ctx, tx, laps); err != nil {
		return err
	}

	var stops []*models.PitStop
	for _, l := range data.PitLaps() {
		driverID, ok := driverIDs[normalizeCode(l.DriverCode)]
		if !ok {
			continue
		}
		stops = append(stops, &models.PitStop{
			SessionID: sessionID,
			DriverID:  driverID,
			LapNumber: l.LapNumber,
			Duration:  normalize.Between(l.PitInTime, l.PitOutTime),
		})
	}
	if report.PitStops, err = repositories.InsertPitStops(ctx, tx, stops); err != nil {
		return err
	}
	return nil
}

// summarizeTelemetry computes one summary per lap before the transaction
// opens. Laps of drivers outside the results are left empty.
func (si *SessionImporter) summarizeTelemetry(ctx context.Context, data *provider.SessionData) []telemetry.Summary {
	out := make([]telemetry.Summary, len(data.Laps))
	if data.Telemetry == nil {
		return out
	}

	known := make(map[string]bool, len(data.Results))
	for _, r := range data.Results {
		known[normalizeCode(r.Code)] = true
	}

	for i, l := range data.Laps {
		if !known[normalizeCode(l.DriverCode)] {
			continue
		}
		lap := l
		sum, err := telemetry.Summarize(ctx, func(ctx context.Context) ([]telemetry.Sample, error) {
			return data.Telemetry.LapTelemetry(ctx, lap)
		})
		if err != nil {
			slog.Debug("telemetry unavailable", "driver", l.DriverCode, "lap", l.LapNumber, "err", err)
		}
		out[i] = sum
	}
	return out
}

func driversFromResults(results []provider.DriverResult) []*models.Driver {
	drivers := make([]*models.Driver, 0, len(results))
	for _, r := range results {
		drivers = append(drivers, &models.Driver{
			Code: normalizeCode(r.Code),
			Name: strings.TrimSpace(r.FullName),
			Team: strings.TrimSpace(r.Team),
		})
	}
	return drivers
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
