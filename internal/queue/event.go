// Package queue defines message payloads exchanged over the message broker.
package queue

// SessionBookedEvent is published after a booking has committed. It is
// audit telemetry only: the synchronous notification to the receiver is
// what gates the commit, so consumers of this queue get a best-effort
// stream for logging and analytics without querying the primary database.
type SessionBookedEvent struct {
	BookingID     uint64  `json:"booking_id"`
	SessionID     uint64  `json:"session_id"`
	SessionName   string  `json:"session_name"`
	EventID       uint64  `json:"event_id"`
	UserID        uint64  `json:"user_id"`
	UserName      string  `json:"user_name"`
	FacilitatorID *uint64 `json:"facilitator_id,omitempty"`
	BookedAt      string  `json:"booked_at"`
}
