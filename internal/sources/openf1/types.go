package openf1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Time accepts the timestamp shapes OpenF1 emits: RFC 3339 with or without
// fractional seconds, occasionally without a zone, and null.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode time: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("decode time: unsupported format %q", raw)
}

// Ptr returns nil for a zero time.
func (t Time) Ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	out := t.Time
	return &out
}

// Meeting is one entry of /meetings, a race weekend or test.
type Meeting struct {
	MeetingKey       int    `json:"meeting_key"`
	MeetingName      string `json:"meeting_name"`
	OfficialName     string `json:"meeting_official_name"`
	Location         string `json:"location"`
	CountryName      string `json:"country_name"`
	CountryCode      string `json:"country_code"`
	CircuitShortName string `json:"circuit_short_name"`
	DateStart        Time   `json:"date_start"`
	Year             int    `json:"year"`
}

// IsTesting reports whether the meeting is a pre-season or in-season test.
func (m Meeting) IsTesting() bool {
	return strings.Contains(strings.ToLower(m.MeetingName), "testing") ||
		strings.Contains(strings.ToLower(m.OfficialName), "testing")
}

// Session is one entry of /sessions.
type Session struct {
	SessionKey  int    `json:"session_key"`
	SessionName string `json:"session_name"`
	SessionType string `json:"session_type"`
	MeetingKey  int    `json:"meeting_key"`
	DateStart   Time   `json:"date_start"`
	DateEnd     Time   `json:"date_end"`
	Year        int    `json:"year"`
}

// Driver is one entry of /drivers for a session.
type Driver struct {
	DriverNumber  int    `json:"driver_number"`
	NameAcronym   string `json:"name_acronym"`
	FullName      string `json:"full_name"`
	BroadcastName string `json:"broadcast_name"`
	TeamName      string `json:"team_name"`
	SessionKey    int    `json:"session_key"`
}

// Lap is one entry of /laps. Durations are seconds.
type Lap struct {
	DriverNumber    int      `json:"driver_number"`
	LapNumber       int      `json:"lap_number"`
	LapDuration     *float64 `json:"lap_duration"`
	DurationSector1 *float64 `json:"duration_sector_1"`
	DurationSector2 *float64 `json:"duration_sector_2"`
	DurationSector3 *float64 `json:"duration_sector_3"`
	DateStart       Time     `json:"date_start"`
	IsPitOutLap     bool     `json:"is_pit_out_lap"`
	STSpeed         *float64 `json:"st_speed"`
}

// Stint is one entry of /stints. LapEnd is nil while the stint is running.
type Stint struct {
	DriverNumber   int    `json:"driver_number"`
	StintNumber    int    `json:"stint_number"`
	LapStart       int    `json:"lap_start"`
	LapEnd         *int   `json:"lap_end"`
	Compound       string `json:"compound"`
	TyreAgeAtStart *int   `json:"tyre_age_at_start"`
}

// Covers reports whether lap falls inside the stint.
func (s Stint) Covers(lap int) bool {
	return lap >= s.LapStart && (s.LapEnd == nil || lap <= *s.LapEnd)
}

// Pit is one entry of /pit. Date marks pit lane entry, PitDuration is the
// time spent in the pit lane in seconds.
type Pit struct {
	DriverNumber int      `json:"driver_number"`
	LapNumber    int      `json:"lap_number"`
	Date         Time     `json:"date"`
	PitDuration  *float64 `json:"pit_duration"`
}

// Position is one entry of /position, emitted whenever a driver's
// position changes.
type Position struct {
	DriverNumber int  `json:"driver_number"`
	Position     int  `json:"position"`
	Date         Time `json:"date"`
}

// CarData is one entry of /car_data, sampled at roughly 4 Hz.
type CarData struct {
	DriverNumber int     `json:"driver_number"`
	Date         Time    `json:"date"`
	Speed        float64 `json:"speed"`
	Throttle     float64 `json:"throttle"`
	Brake        float64 `json:"brake"`
	RPM          float64 `json:"rpm"`
	Gear         int     `json:"n_gear"`
	DRS          int     `json:"drs"`
}
