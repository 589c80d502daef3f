package openf1

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mkoziy/paddock/internal/provider"
)

// Calendar returns meetings ordered by start date.
func Calendar(meetings []Meeting, excludeTesting bool) []Meeting {
	out := make([]Meeting, 0, len(meetings))
	for _, m := range meetings {
		if excludeTesting && m.IsTesting() {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateStart.Before(out[j].DateStart.Time)
	})
	return out
}

// FindMeeting returns the race meeting matching name and its 1-based round
// number. Name is matched case-insensitively against the meeting name,
// location, country and circuit.
func FindMeeting(meetings []Meeting, name string) (Meeting, int, bool) {
	name = strings.TrimSpace(name)
	for i, m := range Calendar(meetings, true) {
		for _, candidate := range []string{m.MeetingName, m.Location, m.CountryName, m.CircuitShortName} {
			if candidate != "" && strings.EqualFold(candidate, name) {
				return m, i + 1, true
			}
		}
	}
	return Meeting{}, 0, false
}

// FindSession picks the session whose display name maps to code.
func FindSession(sessions []Session, code string) (Session, bool) {
	for _, name := range provider.SessionNames(code) {
		for _, s := range sessions {
			if strings.EqualFold(s.SessionName, name) {
				return s, true
			}
		}
	}
	return Session{}, false
}

// EventDate is the calendar date of the meeting's last session.
func EventDate(m Meeting, sessions []Session) time.Time {
	latest := m.DateStart.Time
	for _, s := range sessions {
		if s.DateStart.After(latest) {
			latest = s.DateStart.Time
		}
	}
	if latest.IsZero() {
		return latest
	}
	y, mo, d := latest.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// MapResults converts the session entry list, one result per car number.
func MapResults(drivers []Driver) []provider.DriverResult {
	seen := make(map[int]bool, len(drivers))
	out := make([]provider.DriverResult, 0, len(drivers))
	for _, d := range drivers {
		if seen[d.DriverNumber] {
			continue
		}
		seen[d.DriverNumber] = true
		out = append(out, provider.DriverResult{
			Code:     strings.ToUpper(strings.TrimSpace(d.NameAcronym)),
			FullName: strings.TrimSpace(d.FullName),
			Team:     strings.TrimSpace(d.TeamName),
		})
	}
	return out
}

// MapLaps joins laps with tyre stints, pit visits and position changes.
// Laps of car numbers missing from drivers keep an empty DriverCode.
func MapLaps(laps []Lap, drivers []Driver, stints []Stint, pits []Pit, positions []Position) []provider.Lap {
	codes := make(map[int]string, len(drivers))
	for _, d := range drivers {
		codes[d.DriverNumber] = strings.ToUpper(strings.TrimSpace(d.NameAcronym))
	}

	stintsByDriver := make(map[int][]Stint)
	for _, s := range stints {
		stintsByDriver[s.DriverNumber] = append(stintsByDriver[s.DriverNumber], s)
	}

	type pitKey struct{ driver, lap int }
	pitByLap := make(map[pitKey]Pit, len(pits))
	for _, p := range pits {
		pitByLap[pitKey{p.DriverNumber, p.LapNumber}] = p
	}

	posByDriver := make(map[int][]Position)
	for _, p := range positions {
		posByDriver[p.DriverNumber] = append(posByDriver[p.DriverNumber], p)
	}
	for _, ps := range posByDriver {
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Date.Before(ps[j].Date.Time) })
	}

	out := make([]provider.Lap, 0, len(laps))
	for _, l := range laps {
		lap := provider.Lap{
			DriverCode: codes[l.DriverNumber],
			DriverNo:   l.DriverNumber,
			LapNumber:  l.LapNumber,
			LapTime:    l.LapDuration,
			Sector1:    l.DurationSector1,
			Sector2:    l.DurationSector2,
			Sector3:    l.DurationSector3,
			Start:      l.DateStart.Ptr(),
		}

		if s, ok := stintFor(stintsByDriver[l.DriverNumber], l.LapNumber); ok {
			lap.Compound = s.Compound
			if s.TyreAgeAtStart != nil {
				age := float64(*s.TyreAgeAtStart + l.LapNumber - s.LapStart)
				lap.TyreLife = &age
			}
		}

		if end := lapEnd(l); end != nil {
			lap.Position = positionAt(posByDriver[l.DriverNumber], *end)
		}

		if p, ok := pitByLap[pitKey{l.DriverNumber, l.LapNumber}]; ok {
			lap.PitInTime = p.Date.Ptr()
			if lap.PitInTime != nil && p.PitDuration != nil {
				exit := lap.PitInTime.Add(seconds(*p.PitDuration))
				lap.PitOutTime = &exit
			}
		}

		out = append(out, lap)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DriverNo != out[j].DriverNo {
			return out[i].DriverNo < out[j].DriverNo
		}
		return out[i].LapNumber < out[j].LapNumber
	})
	return out
}

func stintFor(stints []Stint, lap int) (Stint, bool) {
	for _, s := range stints {
		if s.Covers(lap) {
			return s, true
		}
	}
	return Stint{}, false
}

func lapEnd(l Lap) *time.Time {
	if l.DateStart.IsZero() || l.LapDuration == nil {
		return nil
	}
	end := l.DateStart.Add(seconds(*l.LapDuration))
	return &end
}

// positionAt returns the last position reported at or before t.
func positionAt(ps []Position, t time.Time) *float64 {
	i := sort.Search(len(ps), func(i int) bool { return ps[i].Date.After(t) })
	if i == 0 {
		return nil
	}
	pos := float64(ps[i-1].Position)
	return &pos
}

// seconds converts provider seconds to a duration rounded to the microsecond.
func seconds(v float64) time.Duration {
	return time.Duration(math.Round(v*1e6)) * time.Microsecond
}
