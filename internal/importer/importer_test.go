package importer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/mkoziy/paddock/internal/database/dbtest"
	"github.com/mkoziy/paddock/internal/metrics"
	"github.com/mkoziy/paddock/internal/models"
	"github.com/mkoziy/paddock/internal/provider"
	"github.com/mkoziy/paddock/internal/repositories"
	"github.com/mkoziy/paddock/internal/telemetry"
)

var grid = []string{
	"VER", "PER", "HAM", "RUS", "LEC", "SAI", "NOR", "PIA", "ALO", "STR",
	"GAS", "OCO", "ALB", "SAR", "TSU", "RIC", "HUL", "MAG", "BOT", "ZHO",
}

type fakeProvider struct {
	calendar []string
	sessions map[string]*provider.SessionData
	errs     map[string]error
	calls    []string
}

func (f *fakeProvider) FetchSession(_ context.Context, _ int, event, typ string) (*provider.SessionData, error) {
	key := event + "/" + typ
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	if d, ok := f.sessions[key]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%s: %w", key, provider.ErrSessionNotFound)
}

func (f *fakeProvider) FetchEventCalendar(context.Context, int, bool) ([]string, error) {
	return f.calendar, nil
}

type fakeTelemetry map[string][]telemetry.Sample

func (f fakeTelemetry) LapTelemetry(_ context.Context, lap provider.Lap) ([]telemetry.Sample, error) {
	if lap.DriverCode == "PAN" {
		panic("corrupt stream")
	}
	samples, ok := f[fmt.Sprintf("%s/%d", lap.DriverCode, lap.LapNumber)]
	if !ok {
		return nil, telemetry.ErrNoSamples
	}
	return samples, nil
}

func secs(v float64) *float64 { return &v }

// sessionData builds a session where every driver in codes sets laps laps.
// Results only list the drivers in results.
func sessionData(name string, round int, typ models.SessionType, results, codes []string, laps int) *provider.SessionData {
	start := time.Date(2024, 7, 7, 14, 0, 0, 0, time.UTC)
	data := &provider.SessionData{
		Event: provider.EventInfo{
			RoundNumber: round,
			Name:        name,
			Country:     "United Kingdom",
			Location:    "Silverstone",
			Date:        time.Date(2024, 7, 7, 0, 0, 0, 0, time.UTC),
		},
		Session: provider.SessionInfo{Name: provider.SessionNames(string(typ))[0], Date: start},
	}
	for _, code := range results {
		data.Results = append(data.Results, provider.DriverResult{Code: code, FullName: code + " Driver", Team: "Team " + code})
	}
	for _, code := range codes {
		for n := 1; n <= laps; n++ {
			data.Laps = append(data.Laps, provider.Lap{
				DriverCode: code,
				LapNumber:  n,
				LapTime:    secs(90.123),
				Sector1:    secs(28.5),
				Sector2:    secs(math.NaN()),
				Compound:   "soft",
				TyreLife:   secs(float64(n)),
				Position:   secs(3),
			})
		}
	}
	return data
}

func count(t *testing.T, db *bun.DB, model any) int {
	t.Helper()
	n, err := db.NewSelect().Model(model).Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestImportSessionSkipsUnknownDriver(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	codes := append(append([]string{}, grid...), "XXX")
	p := &fakeProvider{sessions: map[string]*provider.SessionData{
		"British Grand Prix/R": sessionData("British Grand Prix", 12, models.SessionR, grid, codes, 3),
	}}
	m := metrics.NewManager()
	si := NewSessionImporter(db, p, m, Options{})

	report, err := si.ImportSession(ctx, 2024, "British Grand Prix", "R")
	if err != nil {
		t.Fatalf("ImportSession: %v", err)
	}
	if report.LapsInserted != 60 || report.LapsSkipped != 3 {
		t.Fatalf("expected 60 laps and 3 skipped, got %+v", report)
	}
	if report.TelemetryMissing != 60 {
		t.Fatalf("expected all laps without telemetry, got %d", report.TelemetryMissing)
	}

	drivers, err := repositories.ListSessionDrivers(ctx, db, report.SessionID)
	if err != nil {
		t.Fatalf("ListSessionDrivers: %v", err)
	}
	if len(drivers) != 20 {
		t.Fatalf("expected 20 drivers with laps, got %d", len(drivers))
	}
	for _, d := range drivers {
		if d.Code == "XXX" {
			t.Fatalf("unknown driver must not be stored")
		}
	}

	rows, err := repositories.ListSessionLaps(ctx, db, report.SessionID, repositories.LapFilter{Driver: "HAM"})
	if err != nil {
		t.Fatalf("ListSessionLaps: %v", err)
	}
	lap := rows[0]
	if lap.LapTime == nil || *lap.LapTime != 90123 || lap.Sector1 == nil || *lap.Sector1 != 28500 {
		t.Fatalf("unexpected lap timings %+v", lap.Lap)
	}
	if lap.Sector2 != nil || lap.Sector3 != nil {
		t.Fatalf("expected NaN and missing sectors to be null")
	}
	if lap.Compound == nil || *lap.Compound != models.CompoundSoft || lap.TireLife == nil || *lap.TireLife != 1 {
		t.Fatalf("unexpected tyre data %+v", lap.Lap)
	}
	if lap.HasTelemetry() {
		t.Fatalf("expected no telemetry without a source")
	}
}

func TestImportSessionPitStops(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	data := sessionData("British Grand Prix", 12, models.SessionR, []string{"HAM", "VER"}, []string{"HAM", "VER"}, 2)
	pitIn := time.Date(2024, 7, 7, 14, 40, 0, 0, time.UTC)
	pitOut := pitIn.Add(2300 * time.Millisecond)
	for i := range data.Laps {
		l := &data.Laps[i]
		if l.LapNumber != 2 {
			continue
		}
		l.PitInTime = &pitIn
		if l.DriverCode == "HAM" {
			l.PitOutTime = &pitOut
		}
	}

	p := &fakeProvider{sessions: map[string]*provider.SessionData{"British Grand Prix/R": data}}
	report, err := NewSessionImporter(db, p, nil, Options{}).ImportSession(ctx, 2024, "British Grand Prix", "R")
	if err != nil {
		t.Fatalf("ImportSession: %v", err)
	}
	if report.PitStops != 2 {
		t.Fatalf("expected 2 pit stops, got %d", report.PitStops)
	}

	var stops []models.PitStop
	if err := db.NewSelect().Model(&stops).Relation("Driver").Order("p.id ASC").Scan(ctx); err != nil {
		t.Fatalf("select pit stops: %v", err)
	}
	for _, s := range stops {
		switch s.Driver.Code {
		case "HAM":
			if s.Duration == nil || *s.Duration != 2300 || s.LapNumber != 2 {
				t.Fatalf("expected HAM stop of 2300 ms on lap 2, got %+v", s)
			}
		case "VER":
			if s.Duration != nil {
				t.Fatalf("expected null duration without pit exit, got %d", *s.Duration)
			}
		default:
			t.Fatalf("unexpected driver %s", s.Driver.Code)
		}
	}
}

func TestImportSessionTelemetry(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	data := sessionData("British Grand Prix", 12, models.SessionQ, []string{"HAM", "PAN", "VER"}, []string{"HAM", "PAN", "VER"}, 1)
	at := time.Date(2024, 7, 6, 15, 0, 0, 0, time.UTC)
	data.Telemetry = fakeTelemetry{
		"HAM/1": {
			{Time: at, Speed: 290.7, Throttle: 100, Brake: false},
			{Time: at.Add(time.Second), Speed: 312.9, Throttle: 99, Brake: false},
			{Time: at.Add(2 * time.Second), Speed: 120, Throttle: 0, Brake: true},
			{Time: at.Add(3 * time.Second), Speed: 180, Throttle: 50, Brake: false},
		},
	}

	p := &fakeProvider{sessions: map[string]*provider.SessionData{"British Grand Prix/Q": data}}
	report, err := NewSessionImporter(db, p, nil, Options{}).ImportSession(ctx, 2024, "British Grand Prix", "Q")
	if err != nil {
		t.Fatalf("ImportSession: %v", err)
	}
	if report.LapsInserted != 3 || report.TelemetryMissing != 2 {
		t.Fatalf("expected 3 laps, 2 without telemetry, got %+v", report)
	}

	rows, err := repositories.ListSessionLaps(ctx, db, report.SessionID, repositories.LapFilter{})
	if err != nil {
		t.Fatalf("ListSessionLaps: %v", err)
	}
	for _, r := range rows {
		if r.DriverCode != "HAM" {
			if r.HasTelemetry() {
				t.Fatalf("expected %s lap without telemetry", r.DriverCode)
			}
			continue
		}
		if r.TopSpeed == nil || *r.TopSpeed != 312 || r.FullThrottlePct == nil || *r.FullThrottlePct != 50 || r.BrakeCount == nil || *r.BrakeCount != 1 {
			t.Fatalf("unexpected telemetry summary %+v", r.Lap)
		}
	}
}

func TestImportSessionIdempotence(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	p := &fakeProvider{sessions: map[string]*provider.SessionData{
		"British Grand Prix/R": sessionData("British Grand Prix", 12, models.SessionR, grid, grid, 2),
	}}

	si := NewSessionImporter(db, p, nil, Options{})
	first, err := si.ImportSession(ctx, 2024, "British Grand Prix", "R")
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := si.ImportSession(ctx, 2024, "British Grand Prix", "R")
	if err != nil {
		t.Fatalf("second import: %v", err)
	}

	if first.SessionID != second.SessionID {
		t.Fatalf("expected the same session id, got %d and %d", first.SessionID, second.SessionID)
	}
	if n := count(t, db, (*models.Season)(nil)); n != 1 {
		t.Fatalf("expected 1 season, got %d", n)
	}
	if n := count(t, db, (*models.Event)(nil)); n != 1 {
		t.Fatalf("expected 1 event, got %d", n)
	}
	if n := count(t, db, (*models.Session)(nil)); n != 1 {
		t.Fatalf("expected 1 session, got %d", n)
	}
	if n := count(t, db, (*models.Driver)(nil)); n != 20 {
		t.Fatalf("expected 20 drivers, got %d", n)
	}

	// Laps carry no natural key, so a plain re-import appends them again.
	if n := count(t, db, (*models.Lap)(nil)); n != 80 {
		t.Fatalf("expected duplicated laps (80), got %d", n)
	}

	replacing := NewSessionImporter(db, p, nil, Options{ReplaceLaps: true})
	third, err := replacing.ImportSession(ctx, 2024, "British Grand Prix", "R")
	if err != nil {
		t.Fatalf("replacing import: %v", err)
	}
	if third.LapsReplaced != 80 {
		t.Fatalf("expected 80 replaced laps, got %d", third.LapsReplaced)
	}
	if n := count(t, db, (*models.Lap)(nil)); n != 40 {
		t.Fatalf("expected 40 laps after replace, got %d", n)
	}
}

func TestImportSessionRollsBackUnknownType(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	data := sessionData("Pre-Season Testing", 1, models.SessionR, grid, grid, 1)
	data.Session.Name = "Day 1"
	p := &fakeProvider{sessions: map[string]*provider.SessionData{"Pre-Season Testing/Day 1": data}}

	_, err := NewSessionImporter(db, p, nil, Options{}).ImportSession(ctx, 2024, "Pre-Season Testing", "Day 1")
	var serr *SessionError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SessionError, got %v", err)
	}
	if !errors.Is(err, repositories.ErrUnknownSessionType) || serr.Year != 2024 || serr.Type != "Day 1" {
		t.Fatalf("unexpected session error %+v", serr)
	}

	// Season and event were written before the session failed; both must be gone.
	if n := count(t, db, (*models.Season)(nil)); n != 0 {
		t.Fatalf("expected rollback to remove season, got %d", n)
	}
	if n := count(t, db, (*models.Event)(nil)); n != 0 {
		t.Fatalf("expected rollback to remove event, got %d", n)
	}
}

func TestImportSessionProviderNotFound(t *testing.T) {
	db := dbtest.New(t)
	m := metrics.NewManager()
	p := &fakeProvider{}

	_, err := NewSessionImporter(db, p, m, Options{}).ImportSession(context.Background(), 2024, "British Grand Prix", "FP2")
	var serr *SessionError
	if !errors.As(err, &serr) || !serr.NotFound() {
		t.Fatalf("expected not-found session error, got %v", err)
	}
}

func TestImportSeasonContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	p := &fakeProvider{
		calendar: []string{"Bahrain Grand Prix", "British Grand Prix"},
		sessions: map[string]*provider.SessionData{},
		errs: map[string]error{
			"Bahrain Grand Prix/Q": errors.New("upstream exploded"),
		},
	}
	for round, event := range p.calendar {
		for _, typ := range []models.SessionType{models.SessionFP1, models.SessionFP3, models.SessionQ, models.SessionR} {
			p.sessions[event+"/"+string(typ)] = sessionData(event, round+1, typ, grid[:4], grid[:4], 2)
		}
	}

	se := NewSeasonImporter(NewSessionImporter(db, p, nil, Options{}), p)
	summary, err := se.ImportSeason(ctx, 2024)
	if err != nil {
		t.Fatalf("ImportSeason: %v", err)
	}

	// FP2, S and SQ are missing at both events; Bahrain Q fails.
	if summary.Events != 2 || summary.Imported != 7 || summary.NotFound != 6 || summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Status() != models.RunPartial {
		t.Fatalf("expected partial status, got %s", summary.Status())
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Type != models.SessionQ {
		t.Fatalf("unexpected failures %+v", summary.Failures)
	}
	if summary.LapsInserted != 7*8 {
		t.Fatalf("expected %d laps, got %d", 7*8, summary.LapsInserted)
	}

	want := []string{
		"Bahrain Grand Prix/S", "Bahrain Grand Prix/FP1", "Bahrain Grand Prix/FP2", "Bahrain Grand Prix/FP3",
		"Bahrain Grand Prix/Q", "Bahrain Grand Prix/SQ", "Bahrain Grand Prix/R",
	}
	for i, key := range want {
		if p.calls[i] != key {
			t.Fatalf("expected call %d to be %s, got %s", i, key, p.calls[i])
		}
	}
	if n := count(t, db, (*models.Session)(nil)); n != 7 {
		t.Fatalf("expected 7 sessions stored, got %d", n)
	}
}

func TestImportSeasonStopsOnCancel(t *testing.T) {
	db := dbtest.New(t)
	p := &fakeProvider{calendar: []string{"Bahrain Grand Prix"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSeasonImporter(NewSessionImporter(db, p, nil, Options{}), p).ImportSeason(ctx, 2024)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(p.calls) != 0 {
		t.Fatalf("expected no provider calls after cancel, got %v", p.calls)
	}
}

func TestRunsRecordOutcome(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	p := &fakeProvider{sessions: map[string]*provider.SessionData{
		"British Grand Prix/R": sessionData("British Grand Prix", 12, models.SessionR, grid[:2], grid[:2], 1),
	}}
	si := NewSessionImporter(db, p, nil, Options{})
	runs := NewRuns(db, "log_level: info\n")

	_, ok, err := runs.Session(ctx, si, 2024, "British Grand Prix", "R")
	if err != nil {
		t.Fatalf("Session run: %v", err)
	}
	if ok.Status != models.RunSucceeded || ok.SessionsOK != 1 || ok.LapsInserted != 2 || !ok.Finished() {
		t.Fatalf("unexpected successful run %+v", ok)
	}

	_, failed, err := runs.Session(ctx, si, 2024, "British Grand Prix", "FP2")
	if err == nil {
		t.Fatalf("expected FP2 import to fail")
	}
	if failed.Status != models.RunFailed || failed.ErrorLog == nil || failed.SessionsFailed != 1 {
		t.Fatalf("unexpected failed run %+v", failed)
	}

	stored, err := repositories.ListImportRuns(ctx, db, 10)
	if err != nil {
		t.Fatalf("ListImportRuns: %v", err)
	}
	if len(stored) != 2 || stored[0].ConfigSnapshot == nil || *stored[0].ConfigSnapshot != "log_level: info\n" {
		t.Fatalf("unexpected stored runs %+v", stored)
	}
}
