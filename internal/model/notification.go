package model

import "time"

// Notification is a write-once record of an inbound booking notification
// as stored by the receiver service in its `notifications` table. The
// user payload is kept as the raw JSON object that arrived on the wire.
type Notification struct {
	ID            uint64    // notifications.id
	SessionID     uint64    // notifications.session_id
	UserPayload   string    // notifications.user_payload (serialized JSON)
	Event         string    // notifications.event
	FacilitatorID *uint64   // notifications.facilitator_id (nullable)
	ReceivedAt    time.Time // notifications.received_at
}
