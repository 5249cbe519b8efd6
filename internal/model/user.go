package model

import "time"

// User represents an end-user account as stored in the `users` table.
// Users register with an email, a unique username and a password, or are
// provisioned automatically on the first Google login. In the latter case
// PasswordHash holds a bcrypt digest of the Google subject id, so the
// account has no usable local password until one is set.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique display handle used for login.
//  Name         – optional full name (may be empty).
//  Email        – unique email address within the users partition.
//  PasswordHash – bcrypt hashed password (empty only for legacy rows).
//  GoogleID     – linked Google subject id (nullable).
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	GoogleID     *string   // users.google_id (nullable)
	CreatedAt    time.Time // users.created_at
}
