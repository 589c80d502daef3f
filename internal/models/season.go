package models

import "github.com/uptrace/bun"

// Season is a championship year. The year is the natural and primary key.
type Season struct {
	bun.BaseModel `bun:"table:seasons,alias:sn"`

	Year int `bun:"year,pk" json:"year"`

	Events []*Event `bun:"rel:has-many,join:year=season_year" json:"-"`
}
