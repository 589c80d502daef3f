package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/mkoziy/paddock/internal/models"
)

// UpsertSeason creates the season if it does not exist.
func UpsertSeason(ctx context.Context, db bun.IDB, year int) error {
	if year <= 0 {
		return fmt.Errorf("upsert season %d: %w: year must be positive", year, ErrConstraint)
	}
	_, err := db.NewInsert().
		Model(&models.Season{Year: year}).
		On("CONFLICT (year) DO NOTHING").
		Exec(ctx)
	return classify("upsert season", err)
}

// UpsertEvent returns the id of the event keyed by (season_year,
// round_number), creating it on first sight. Existing rows are not updated.
func UpsertEvent(ctx context.Context, db bun.IDB, event *models.Event) (int64, error) {
	if err := event.Validate(); err != nil {
		return 0, fmt.Errorf("upsert event: %w: %v", ErrConstraint, err)
	}

	var id int64
	err := db.NewInsert().
		Model(event).
		ExcludeColumn("id").
		On("CONFLICT (season_year, round_number) DO UPDATE").
		Set("season_year = EXCLUDED.season_year").
		Returning("id").
		Scan(ctx, &id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, classify("upsert event", err)
	}
	if id == 0 {
		err = db.NewSelect().
			Model((*models.Event)(nil)).
			Column("id").
			Where("season_year = ?", event.SeasonYear).
			Where("round_number = ?", event.RoundNumber).
			Scan(ctx, &id)
		if err != nil {
			return 0, unresolved(fmt.Sprintf("event %d round %d", event.SeasonYear, event.RoundNumber), err)
		}
	}
	event.ID = id
	return id, nil
}

// UpsertSession returns the id of the session keyed by (event_id, type).
// Codes outside the session vocabulary are rejected.
func UpsertSession(ctx context.Context, db bun.IDB, eventID int64, typ models.SessionType, date time.Time) (int64, error) {
	if !typ.Valid() {
		return 0, fmt.Errorf("upsert session %q: %w", typ, ErrUnknownSessionType)
	}

	session := &models.Session{EventID: eventID, Type: typ, Date: date}
	var id int64
	err := db.NewInsert().
		Model(session).
		ExcludeColumn("id").
		On("CONFLICT (event_id, type) DO UPDATE").
		Set("type = EXCLUDED.type").
		Returning("id").
		Scan(ctx, &id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, classify("upsert session", err)
	}
	if id == 0 {
		err = db.NewSelect().
			Model((*models.Session)(nil)).
			Column("id").
			Where("event_id = ?", eventID).
			Where("type = ?", typ).
			Scan(ctx, &id)
		if err != nil {
			return 0, unresolved(fmt.Sprintf("session %s of event %d", typ, eventID), err)
		}
	}
	return id, nil
}

// ResolveDrivers upserts every driver keyed by (code, season_year) and
// returns their ids by code. Drivers without a code are skipped. The team of
// an existing driver is kept.
func ResolveDrivers(ctx context.Context, db bun.IDB, year int, drivers []*models.Driver) (map[string]int64, error) {
	ids := make(map[string]int64, len(drivers))
	for _, d := range drivers {
		if d.Code == "" {
			continue
		}
		d.SeasonYear = year
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("resolve driver %q: %w: %v", d.Code, ErrConstraint, err)
		}

		var id int64
		err := db.NewInsert().
			Model(d).
			ExcludeColumn("id").
			On("CONFLICT (code, season_year) DO UPDATE").
			Set("code = EXCLUDED.code").
			Returning("id").
			Scan(ctx, &id)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, classify("resolve driver", err)
		}
		if id == 0 {
			err = db.NewSelect().
				Model((*models.Driver)(nil)).
				Column("id").
				Where("code = ?", d.Code).
				Where("season_year = ?", year).
				Scan(ctx, &id)
			if err != nil {
				return nil, unresolved(fmt.Sprintf("driver %s in %d", d.Code, year), err)
			}
		}
		d.ID = id
		ids[d.Code] = id
	}
	return ids, nil
}

func unresolved(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrUnresolved)
	}
	return classify("lookup "+what, err)
}
