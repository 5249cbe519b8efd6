package model

import "time"

// Facilitator represents a facilitator account as stored in the
// `facilitators` table. Facilitators live in their own partition: an email
// that exists in `users` may also exist here and refers to a distinct
// entity. Facilitators require a phone number and have no username; they
// log in by email only.
type Facilitator struct {
	ID           uint64    // facilitators.id
	Name         string    // facilitators.name
	Email        string    // facilitators.email
	Phone        string    // facilitators.phone
	PasswordHash string    // facilitators.password_hash
	GoogleID     *string   // facilitators.google_id (nullable)
	CreatedAt    time.Time // facilitators.created_at
}
