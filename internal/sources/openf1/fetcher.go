package openf1

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkoziy/paddock/internal/provider"
)

var _ provider.Provider = (*Fetcher)(nil)

// Fetcher assembles provider.SessionData from OpenF1 endpoints.
type Fetcher struct {
	client    *Client
	telemetry bool
}

// NewFetcher creates a new OpenF1 fetcher. withTelemetry controls whether
// laps carry a car data source.
func NewFetcher(client *Client, withTelemetry bool) *Fetcher {
	return &Fetcher{client: client, telemetry: withTelemetry}
}

// FetchEventCalendar lists the meeting names of a year in date order.
func (f *Fetcher) FetchEventCalendar(ctx context.Context, year int, excludeTesting bool) ([]string, error) {
	meetings, err := f.client.Meetings(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar %d: %w", year, err)
	}
	cal := Calendar(meetings, excludeTesting)
	names := make([]string, 0, len(cal))
	for _, m := range cal {
		names = append(names, m.MeetingName)
	}
	return names, nil
}

// FetchSession loads one session of a meeting. sessionType is an internal
// code such as "Q"; unknown codes are looked up verbatim.
func (f *Fetcher) FetchSession(ctx context.Context, year int, eventName, sessionType string) (*provider.SessionData, error) {
	meetings, err := f.client.Meetings(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("fetch meetings %d: %w", year, err)
	}
	meeting, round, ok := FindMeeting(meetings, eventName)
	if !ok {
		return nil, fmt.Errorf("%d %q: %w", year, eventName, provider.ErrEventNotFound)
	}

	sessions, err := f.client.Sessions(ctx, meeting.MeetingKey)
	if err != nil {
		return nil, fmt.Errorf("fetch sessions: %w", err)
	}
	session, ok := FindSession(sessions, sessionType)
	if !ok {
		return nil, fmt.Errorf("%d %s %s: %w", year, meeting.MeetingName, sessionType, provider.ErrSessionNotFound)
	}

	key := session.SessionKey
	drivers, err := f.client.Drivers(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch drivers: %w", err)
	}
	laps, err := f.client.Laps(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch laps: %w", err)
	}
	stints, err := f.client.Stints(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch stints: %w", err)
	}
	pits, err := f.client.Pits(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch pits: %w", err)
	}
	positions, err := f.client.Positions(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}

	data := &provider.SessionData{
		Event: provider.EventInfo{
			RoundNumber: round,
			Name:        meeting.MeetingName,
			Country:     meeting.CountryName,
			Location:    meeting.Location,
			Date:        EventDate(meeting, sessions),
		},
		Session: provider.SessionInfo{
			Name: session.SessionName,
			Date: session.DateStart.Time,
		},
		Results: MapResults(drivers),
		Laps:    MapLaps(laps, drivers, stints, pits, positions),
	}
	if f.telemetry {
		data.Telemetry = newCarTelemetry(f.client, key)
	}

	slog.Debug("openf1: session loaded",
		"year", year, "event", meeting.MeetingName, "type", sessionType,
		"session_key", key, "drivers", len(data.Results), "laps", len(data.Laps))
	return data, nil
}
