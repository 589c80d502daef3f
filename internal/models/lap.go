package models

import "github.com/uptrace/bun"

// Lap is a single timed lap. Times are milliseconds; every measurement is
// nullable because timing feeds drop values routinely.
type Lap struct {
	bun.BaseModel `bun:"table:laps,alias:l"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	SessionID       int64     `bun:"session_id,notnull" json:"session_id"`
	DriverID        int64     `bun:"driver_id,notnull" json:"driver_id"`
	LapNumber       int       `bun:"lap_number,notnull" json:"lap_number"`
	LapTime         *int64    `bun:"lap_time" json:"lap_time"`
	Sector1         *int64    `bun:"sector1" json:"sector1"`
	Sector2         *int64    `bun:"sector2" json:"sector2"`
	Sector3         *int64    `bun:"sector3" json:"sector3"`
	Compound        *Compound `bun:"compound,type:varchar(20)" json:"compound"`
	TireLife        *int64    `bun:"tire_life" json:"tire_life"`
	Position        *int64    `bun:"position" json:"position"`
	TopSpeed        *int64    `bun:"top_speed" json:"top_speed"`
	FullThrottlePct *float64  `bun:"full_throttle_pct" json:"full_throttle_pct"`
	BrakeCount      *int64    `bun:"brake_count" json:"brake_count"`

	Session *Session `bun:"rel:belongs-to,join:session_id=id" json:"-"`
	Driver  *Driver  `bun:"rel:belongs-to,join:driver_id=id" json:"-"`
}

// HasTelemetry reports whether any telemetry summary was stored.
func (l *Lap) HasTelemetry() bool {
	return l.TopSpeed != nil || l.FullThrottlePct != nil || l.BrakeCount != nil
}
