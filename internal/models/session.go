package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Session is one on-track activity of an event, unique per (event_id, type).
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ss"`

	ID      int64       `bun:"id,pk,autoincrement" json:"id"`
	EventID int64       `bun:"event_id,notnull,unique:sessions_event_type" json:"event_id"`
	Type    SessionType `bun:"type,notnull,type:varchar(3),unique:sessions_event_type" json:"type"`
	Date    time.Time   `bun:"date,notnull" json:"date"`

	Event    *Event     `bun:"rel:belongs-to,join:event_id=id" json:"-"`
	Laps     []*Lap     `bun:"rel:has-many,join:id=session_id" json:"-"`
	PitStops []*PitStop `bun:"rel:has-many,join:id=session_id" json:"-"`
}
