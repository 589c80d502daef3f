package models

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Event is one race weekend, unique per (season_year, round_number).
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	SeasonYear  int       `bun:"season_year,notnull,unique:events_season_round" json:"season_year"`
	RoundNumber int       `bun:"round_number,notnull,unique:events_season_round" json:"round_number"`
	Name        string    `bun:"name,notnull,type:varchar(100)" json:"name"`
	Country     string    `bun:"country,notnull,type:varchar(100)" json:"country"`
	Circuit     string    `bun:"circuit,notnull,type:varchar(100)" json:"circuit"`
	EventDate   time.Time `bun:"event_date,notnull,type:date" json:"event_date"`

	Season   *Season    `bun:"rel:belongs-to,join:season_year=year" json:"-"`
	Sessions []*Session `bun:"rel:has-many,join:id=event_id" json:"-"`
}

// Validate checks the fields needed to resolve an event.
func (e *Event) Validate() error {
	if e.SeasonYear <= 0 {
		return errors.New("season year is required")
	}
	if e.RoundNumber <= 0 {
		return errors.New("round number must be positive")
	}
	if e.Name == "" {
		return errors.New("event name is required")
	}
	return nil
}
