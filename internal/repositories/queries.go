package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/mkoziy/paddock/internal/models"
)

// LapRow is a lap joined with its driver code.
type LapRow struct {
	models.Lap `bun:",extend"`

	DriverCode string `bun:"driver_code" json:"driver_code"`
}

// LapFilter narrows ListSessionLaps. Zero values do not filter.
type LapFilter struct {
	Driver   string
	Compound string
	LapMin   *int
	LapMax   *int
}

// ListSeasons returns all seasons ordered by year.
func ListSeasons(ctx context.Context, db bun.IDB) ([]models.Season, error) {
	seasons := make([]models.Season, 0)
	err := db.NewSelect().
		Model(&seasons).
		Order("sn.year ASC").
		Scan(ctx)
	return seasons, classify("list seasons", err)
}

// SeasonExists reports whether the season has been imported.
func SeasonExists(ctx context.Context, db bun.IDB, year int) (bool, error) {
	ok, err := db.NewSelect().
		Model((*models.Season)(nil)).
		Where("sn.year = ?", year).
		Exists(ctx)
	return ok, classify("season exists", err)
}

// ListEvents returns the events of a season ordered by round.
func ListEvents(ctx context.Context, db bun.IDB, year int) ([]models.Event, error) {
	events := make([]models.Event, 0)
	err := db.NewSelect().
		Model(&events).
		Where("e.season_year = ?", year).
		Order("e.round_number ASC").
		Scan(ctx)
	return events, classify("list events", err)
}

// ListSeasonDrivers returns the drivers of a season ordered by code.
func ListSeasonDrivers(ctx context.Context, db bun.IDB, year int) ([]models.Driver, error) {
	drivers := make([]models.Driver, 0)
	err := db.NewSelect().
		Model(&drivers).
		Where("d.season_year = ?", year).
		Order("d.code ASC").
		Scan(ctx)
	return drivers, classify("list drivers", err)
}

// GetSession fetches a session by id.
func GetSession(ctx context.Context, db bun.IDB, id int64) (*models.Session, error) {
	session := new(models.Session)
	err := db.NewSelect().
		Model(session).
		Where("ss.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, classify("get session", err)
	}
	return session, nil
}

// FindSession looks a session up by its natural key.
func FindSession(ctx context.Context, db bun.IDB, year, round int, typ models.SessionType) (*models.Session, error) {
	session := new(models.Session)
	err := db.NewSelect().
		Model(session).
		Join("JOIN events AS e ON e.id = ss.event_id").
		Where("e.season_year = ?", year).
		Where("e.round_number = ?", round).
		Where("ss.type = ?", typ).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %d/%d/%s: %w", year, round, typ, ErrNotFound)
	}
	if err != nil {
		return nil, classify("find session", err)
	}
	return session, nil
}

// ListSessionDrivers returns the drivers that set at least one lap in the
// session, ordered by code.
func ListSessionDrivers(ctx context.Context, db bun.IDB, sessionID int64) ([]models.Driver, error) {
	drivers := make([]models.Driver, 0)
	err := db.NewSelect().
		Model(&drivers).
		Where("d.id IN (?)", db.NewSelect().
			Model((*models.Lap)(nil)).
			Column("driver_id").
			Where("session_id = ?", sessionID)).
		Order("d.code ASC").
		Scan(ctx)
	return drivers, classify("list session drivers", err)
}

// ListSessionLaps returns the laps of a session ordered by lap number, then
// driver code.
func ListSessionLaps(ctx context.Context, db bun.IDB, sessionID int64, f LapFilter) ([]LapRow, error) {
	rows := make([]LapRow, 0)
	q := db.NewSelect().
		Model(&rows).
		ColumnExpr("l.*").
		ColumnExpr("d.code AS driver_code").
		Join("JOIN drivers AS d ON d.id = l.driver_id").
		Where("l.session_id = ?", sessionID)

	if f.Driver != "" {
		q = q.Where("d.code = ?", strings.ToUpper(f.Driver))
	}
	if f.Compound != "" {
		q = q.Where("l.compound = ?", strings.ToUpper(f.Compound))
	}
	if f.LapMin != nil {
		q = q.Where("l.lap_number >= ?", *f.LapMin)
	}
	if f.LapMax != nil {
		q = q.Where("l.lap_number <= ?", *f.LapMax)
	}

	err := q.Order("l.lap_number ASC", "d.code ASC").Scan(ctx)
	return rows, classify("list laps", err)
}
