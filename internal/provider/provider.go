// Package provider defines the boundary between the importer and the
// external timing data source.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/mkoziy/paddock/internal/telemetry"
)

// ErrSessionNotFound is returned when the provider has no data for a
// requested session, e.g. FP2 on a sprint weekend.
var ErrSessionNotFound = errors.New("session not found")

// ErrEventNotFound is returned when no event matches the requested name.
var ErrEventNotFound = errors.New("event not found")

// Provider is the data source the importer reads from.
type Provider interface {
	FetchSession(ctx context.Context, year int, eventName, sessionType string) (*SessionData, error)
	FetchEventCalendar(ctx context.Context, year int, excludeTesting bool) ([]string, error)
}

// EventInfo describes the race weekend a session belongs to.
type EventInfo struct {
	RoundNumber int
	Name        string
	Country     string
	Location    string
	Date        time.Time
}

// SessionInfo describes the session itself. Name is the provider display name.
type SessionInfo struct {
	Name string
	Date time.Time
}

// DriverResult is one entry of the session classification.
type DriverResult struct {
	Code     string
	FullName string
	Team     string
}

// Lap is one timed lap as reported by the provider. Every measurement can be
// missing.
type Lap struct {
	DriverCode string
	DriverNo   int
	LapNumber  int
	LapTime    *float64
	Sector1    *float64
	Sector2    *float64
	Sector3    *float64
	Compound   string
	TyreLife   *float64
	Position   *float64
	Start      *time.Time
	PitInTime  *time.Time
	PitOutTime *time.Time
}

// IsPitLap reports whether the car entered the pit lane on this lap.
func (l Lap) IsPitLap() bool {
	return l.PitInTime != nil && !l.PitInTime.IsZero()
}

// TelemetrySource gives access to the samples recorded during a lap.
type TelemetrySource interface {
	LapTelemetry(ctx context.Context, lap Lap) ([]telemetry.Sample, error)
}

// SessionData is everything the importer needs for one session.
type SessionData struct {
	Event     EventInfo
	Session   SessionInfo
	Results   []DriverResult
	Laps      []Lap
	Telemetry TelemetrySource
}

// PitLaps returns the laps carrying a pit-in timestamp.
func (s *SessionData) PitLaps() []Lap {
	var out []Lap
	for _, l := range s.Laps {
		if l.IsPitLap() {
			out = append(out, l)
		}
	}
	return out
}
