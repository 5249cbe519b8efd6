package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-session-booking/internal/model"
)

// EventRepo provides read access to the `events` table. Events are
// created by administrative flows outside this service, so the repo only
// lists and fetches.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

const eventCols = "id, name, description, date, location, created_at"

// ListAll returns every event ordered by date.
func (r *EventRepo) ListAll(ctx context.Context) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+eventCols+" FROM events ORDER BY date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		var desc, loc sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &desc, &e.Date, &loc, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Description = desc.String
		e.Location = loc.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID fetches a single event. sql.ErrNoRows maps to ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	var e model.Event
	var desc, loc sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+eventCols+" FROM events WHERE id=? LIMIT 1", id).
		Scan(&e.ID, &e.Name, &desc, &e.Date, &loc, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Event{}, ErrEventNotFound
	}
	if err != nil {
		return model.Event{}, err
	}
	e.Description = desc.String
	e.Location = loc.String
	return e, nil
}
