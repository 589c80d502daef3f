package models

import (
	"errors"
	"unicode/utf8"

	"github.com/uptrace/bun"
)

// Driver is a competitor within one season, unique per (code, season_year).
// Team is the first team seen for the season and is never updated.
type Driver struct {
	bun.BaseModel `bun:"table:drivers,alias:d"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	Code       string `bun:"code,notnull,type:varchar(3),unique:drivers_code_season" json:"code"`
	Name       string `bun:"name,notnull,type:varchar(100)" json:"name"`
	Team       string `bun:"team,notnull,type:varchar(100)" json:"team"`
	SeasonYear int    `bun:"season_year,notnull,unique:drivers_code_season" json:"season_year"`

	Season *Season `bun:"rel:belongs-to,join:season_year=year" json:"-"`
}

// Validate checks that the driver can be keyed.
func (d *Driver) Validate() error {
	if d.Code == "" {
		return errors.New("driver code is required")
	}
	if utf8.RuneCountInString(d.Code) > 3 {
		return errors.New("driver code must be at most 3 characters")
	}
	if d.SeasonYear <= 0 {
		return errors.New("season year is required")
	}
	return nil
}
