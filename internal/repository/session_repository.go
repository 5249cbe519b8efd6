package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/event-session-booking/internal/model"
)

// SessionRepo provides read access to the `sessions` table. Sessions are
// created by administrative flows and are read-only from the booking
// coordinator's perspective.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// FacilitatorRef is the compact facilitator representation nested inside
// session listings and booking details.
type FacilitatorRef struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// SessionDetail is a session joined with its optional facilitator, as
// returned by the public listing endpoints.
type SessionDetail struct {
	ID          uint64          `json:"id"`
	EventID     uint64          `json:"-"`
	Name        string          `json:"name"`
	StartTime   time.Time       `json:"start_time"`
	Facilitator *FacilitatorRef `json:"facilitator"`
}

const sessionSelect = `SELECT s.id, s.event_id, s.name, s.facilitator_id, s.start_time, s.created_at
                       FROM sessions s`

// GetByID fetches a session. sql.ErrNoRows maps to ErrSessionNotFound.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (model.Session, error) {
	var s model.Session
	var fid sql.NullInt64
	err := r.DB.QueryRowContext(ctx, sessionSelect+" WHERE s.id=? LIMIT 1", id).
		Scan(&s.ID, &s.EventID, &s.Name, &fid, &s.StartTime, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, err
	}
	if fid.Valid {
		f := uint64(fid.Int64)
		s.FacilitatorID = &f
	}
	return s, nil
}

const sessionDetailSelect = `SELECT s.id, s.event_id, s.name, s.start_time, f.id, f.name
                             FROM sessions s
                             LEFT JOIN facilitators f ON f.id = s.facilitator_id`

func scanSessionDetails(rows *sql.Rows) ([]SessionDetail, error) {
	defer rows.Close()
	details := make([]SessionDetail, 0)
	for rows.Next() {
		var d SessionDetail
		var fid sql.NullInt64
		var fname sql.NullString
		if err := rows.Scan(&d.ID, &d.EventID, &d.Name, &d.StartTime, &fid, &fname); err != nil {
			return nil, err
		}
		if fid.Valid {
			d.Facilitator = &FacilitatorRef{ID: uint64(fid.Int64), Name: fname.String}
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ListAll returns every session with its facilitator, ordered by start time.
func (r *SessionRepo) ListAll(ctx context.Context) ([]SessionDetail, error) {
	rows, err := r.DB.QueryContext(ctx, sessionDetailSelect+" ORDER BY s.start_time")
	if err != nil {
		return nil, err
	}
	return scanSessionDetails(rows)
}

// ListByEvent returns the sessions belonging to one event.
func (r *SessionRepo) ListByEvent(ctx context.Context, eventID uint64) ([]SessionDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		sessionDetailSelect+" WHERE s.event_id=? ORDER BY s.start_time", eventID)
	if err != nil {
		return nil, err
	}
	return scanSessionDetails(rows)
}

// GetDetail returns a single session with its facilitator.
func (r *SessionRepo) GetDetail(ctx context.Context, id uint64) (SessionDetail, error) {
	rows, err := r.DB.QueryContext(ctx, sessionDetailSelect+" WHERE s.id=? LIMIT 1", id)
	if err != nil {
		return SessionDetail{}, err
	}
	details, err := scanSessionDetails(rows)
	if err != nil {
		return SessionDetail{}, err
	}
	if len(details) == 0 {
		return SessionDetail{}, ErrSessionNotFound
	}
	return details[0], nil
}
