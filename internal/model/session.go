package model

import "time"

// Session is a scheduled activity instance belonging to an event. The
// facilitator reference is optional; sessions without one still accept
// bookings but the notification payload carries a null facilitator_id.
type Session struct {
	ID            uint64    // sessions.id
	EventID       uint64    // sessions.event_id
	Name          string    // sessions.name
	FacilitatorID *uint64   // sessions.facilitator_id (nullable)
	StartTime     time.Time // sessions.start_time
	CreatedAt     time.Time // sessions.created_at
}
