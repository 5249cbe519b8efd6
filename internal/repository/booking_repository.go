package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/event-session-booking/internal/model"
)

// BookingRepo provides access to the `bookings` table. The coordinated
// write path runs through a BookingUnit so that the duplicate check, the
// tentative insert and the commit-or-rollback decision share one
// transaction; the plain methods serve listings and cancellation.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// BookingUnit is the unit of work behind a single booking attempt. The
// caller must Commit or Rollback; nothing is visible to other requests
// until Commit. Running the duplicate check and the insert on the same
// transaction closes the check-then-insert window; the composite unique
// keys over (identity, session, active) remain the backstop when two
// transactions race past the check anyway.
type BookingUnit struct{ tx *sql.Tx }

// Begin opens the transaction for one booking attempt.
func (r *BookingRepo) Begin(ctx context.Context) (*BookingUnit, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &BookingUnit{tx: tx}, nil
}

// SessionByID loads the target session inside the transaction.
// sql.ErrNoRows maps to ErrSessionNotFound.
func (u *BookingUnit) SessionByID(ctx context.Context, id uint64) (model.Session, error) {
	var s model.Session
	var fid sql.NullInt64
	err := u.tx.QueryRowContext(ctx,
		"SELECT id, event_id, name, facilitator_id, start_time, created_at FROM sessions WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.EventID, &s.Name, &fid, &s.StartTime, &s.CreatedAt)
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

// HasActiveBooking reports whether a non-cancelled booking already exists
// for the identity and session.
func (u *BookingUnit) HasActiveBooking(ctx context.Context, ident model.Identity, sessionID uint64) (bool, error) {
	col := "user_id"
	if ident.Role == model.RoleFacilitator {
		col = "facilitator_id"
	}
	var exists bool
	err := u.tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM bookings WHERE "+col+"=? AND session_id=? AND status <> ?)",
		ident.ID, sessionID, model.StatusCancelled).Scan(&exists)
	return exists, err
}

// InsertBooking writes the tentative booking row and populates the
// generated id and creation timestamp. A 1062 duplicate-key violation on
// either unique index maps to ErrAlreadyBooked.
func (u *BookingUnit) InsertBooking(ctx context.Context, b *model.Booking) error {
	res, err := u.tx.ExecContext(ctx,
		"INSERT INTO bookings (user_id, facilitator_id, session_id, event_id, status) VALUES (?,?,?,?,?)",
		b.UserID, b.FacilitatorID, b.SessionID, b.EventID, b.Status)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrAlreadyBooked
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return u.tx.QueryRowContext(ctx,
		"SELECT created_at FROM bookings WHERE id=?", b.ID).Scan(&b.CreatedAt)
}

func (u *BookingUnit) Commit() error   { return u.tx.Commit() }
func (u *BookingUnit) Rollback() error { return u.tx.Rollback() }

// SessionBookingRef is the compact booking representation nested inside
// session listings.
type SessionBookingRef struct {
	ID     uint64  `json:"id"`
	UserID *uint64 `json:"user_id"`
	Status string  `json:"status"`
}

// ListBySession returns the bookings attached to one session.
func (r *BookingRepo) ListBySession(ctx context.Context, sessionID uint64) ([]SessionBookingRef, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, status FROM bookings WHERE session_id=? ORDER BY created_at", sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	refs := make([]SessionBookingRef, 0)
	for rows.Next() {
		var ref SessionBookingRef
		var uid sql.NullInt64
		if err := rows.Scan(&ref.ID, &uid, &ref.Status); err != nil {
			return nil, err
		}
		if uid.Valid {
			u := uint64(uid.Int64)
			ref.UserID = &u
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// BookingDetail is a caller's booking joined with its event, session and
// facilitator, as returned by GET /api/bookings.
type BookingDetail struct {
	ID        uint64    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Event     struct {
		ID          uint64    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
		Location    string    `json:"location"`
	} `json:"event"`
	Session struct {
		ID          uint64          `json:"id"`
		Name        string          `json:"name"`
		Time        time.Time       `json:"time"`
		Facilitator *FacilitatorRef `json:"facilitator"`
	} `json:"session"`
}

// ListByUser returns the bookings belonging to one user with full event
// and session detail, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.status, b.created_at,
	                  e.id, e.name, e.description, e.date, e.location,
	                  s.id, s.name, s.start_time, f.id, f.name
	           FROM bookings b
	           JOIN sessions s ON s.id = b.session_id
	           JOIN events e ON e.id = b.event_id
	           LEFT JOIN facilitators f ON f.id = s.facilitator_id
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var desc, loc sql.NullString
		var fid sql.NullInt64
		var fname sql.NullString
		if err := rows.Scan(&d.ID, &d.Status, &d.CreatedAt,
			&d.Event.ID, &d.Event.Title, &desc, &d.Event.Date, &loc,
			&d.Session.ID, &d.Session.Name, &d.Session.Time, &fid, &fname); err != nil {
			return nil, err
		}
		d.Event.Description = desc.String
		d.Event.Location = loc.String
		if fid.Valid {
			d.Session.Facilitator = &FacilitatorRef{ID: uint64(fid.Int64), Name: fname.String}
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// CancelBySession transitions every booking of a session to cancelled.
// Rows are never deleted; the status transition is the cancellation.
func (r *BookingRepo) CancelBySession(ctx context.Context, sessionID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE session_id=? AND status <> ?",
		model.StatusCancelled, sessionID, model.StatusCancelled)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
