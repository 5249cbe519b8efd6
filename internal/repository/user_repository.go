package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/event-session-booking/internal/model"
	"github.com/iliyamo/event-session-booking/internal/utils"
)

// UserRepo provides access to the `users` table, the end-user identity
// partition. Email and username uniqueness is enforced per-partition: the
// same email may exist in `facilitators` and refers to a different entity.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id, username, name, email, password_hash, google_id, created_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var name sql.NullString
	var gid sql.NullString
	err := row.Scan(&u.ID, &u.Username, &name, &u.Email, &u.PasswordHash, &gid, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Name = name.String
	if gid.Valid {
		g := gid.String
		u.GoogleID = &g
	}
	return u, nil
}

// Create inserts a user with a bcrypt-hashed password and returns its ID.
// Duplicate-key violations are mapped onto the email/username sentinels by
// inspecting which unique index MySQL reports in the 1062 message.
func (r *UserRepo) Create(ctx context.Context, email, username, name, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, name, email, password_hash) VALUES (?,?,?,?)",
		username, name, email, hash)
	if err != nil {
		return 0, dupUserErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateFromGoogle provisions a user resolved through the OAuth callback.
// The password marker is a bcrypt hash of the Google subject id, so the
// account has no usable local password, and the subject id is linked.
func (r *UserRepo) CreateFromGoogle(ctx context.Context, email, username, googleID string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	marker, err := utils.HashPassword(googleID, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, name, email, password_hash, google_id) VALUES (?,?,?,?,?)",
		username, username, email, marker, googleID)
	if err != nil {
		return 0, dupUserErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByEmailOrUsername looks a user up by either login identifier.
func (r *UserRepo) GetByEmailOrUsername(ctx context.Context, identifier string) (model.User, error) {
	id := strings.TrimSpace(identifier)
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? OR username=? LIMIT 1",
		strings.ToLower(id), id))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateGoogleID relinks the external subject id for an existing user.
func (r *UserRepo) UpdateGoogleID(ctx context.Context, id uint64, googleID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET google_id=? WHERE id=?", googleID, id)
	return err
}

// dupUserErr maps MySQL duplicate-key errors (1062) onto the sentinel for
// whichever unique index was violated.
func dupUserErr(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "username") {
		return ErrUsernameExists
	}
	return ErrEmailExists
}
