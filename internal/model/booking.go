package model

import "time"

// Booking status values. A booking is created as StatusBooked by the
// coordinator; cancellation transitions to StatusCancelled and never
// deletes the row. StatusPending exists for administrative imports.
const (
	StatusPending   = "pending"
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
)

// Booking records that an identity booked a session. Exactly one of
// UserID/FacilitatorID is set, mirroring the identity partitions. The
// table enforces at most one non-cancelled booking per (identity, session)
// pair through composite unique keys over a generated `active` column
// that is NULL for cancelled rows:
//
//  UNIQUE (user_id, session_id, active)
//  UNIQUE (facilitator_id, session_id, active)
//  active TINYINT AS (IF(status = 'cancelled', NULL, 1)) STORED
//
// Bookings are created and status-transitioned exclusively by the
// coordinator; clients never mutate them directly.
type Booking struct {
	ID            uint64    // bookings.id
	UserID        *uint64   // bookings.user_id (nullable)
	FacilitatorID *uint64   // bookings.facilitator_id (nullable)
	SessionID     uint64    // bookings.session_id
	EventID       uint64    // bookings.event_id
	Status        string    // bookings.status
	CreatedAt     time.Time // bookings.created_at
}

// IdentityID returns the id of whichever partition owns the booking.
func (b Booking) IdentityID() uint64 {
	if b.UserID != nil {
		return *b.UserID
	}
	if b.FacilitatorID != nil {
		return *b.FacilitatorID
	}
	return 0
}
