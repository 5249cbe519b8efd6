package model

import "time"

// Event is a top-level happening that groups one or more sessions.
// Events are created by administrative flows and are read-only here.
type Event struct {
	ID          uint64    // events.id
	Name        string    // events.name
	Description string    // events.description
	Date        time.Time // events.date
	Location    string    // events.location
	CreatedAt   time.Time // events.created_at
}
