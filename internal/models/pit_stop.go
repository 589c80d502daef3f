package models

import "github.com/uptrace/bun"

// PitStop is derived from a lap that entered the pit lane. Duration is the
// pit-lane time in milliseconds and is nil when the exit was not recorded.
type PitStop struct {
	bun.BaseModel `bun:"table:pit_stops,alias:p"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	SessionID int64  `bun:"session_id,notnull" json:"session_id"`
	DriverID  int64  `bun:"driver_id,notnull" json:"driver_id"`
	LapNumber int    `bun:"lap_number,notnull" json:"lap_number"`
	Duration  *int64 `bun:"duration" json:"duration"`

	Session *Session `bun:"rel:belongs-to,join:session_id=id" json:"-"`
	Driver  *Driver  `bun:"rel:belongs-to,join:driver_id=id" json:"-"`
}
