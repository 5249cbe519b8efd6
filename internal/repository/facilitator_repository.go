package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/event-session-booking/internal/model"
	"github.com/iliyamo/event-session-booking/internal/utils"
)

// FacilitatorRepo provides access to the `facilitators` table, the second
// identity partition. Facilitators have no username and log in by email.
type FacilitatorRepo struct{ DB *sql.DB }

func NewFacilitatorRepo(db *sql.DB) *FacilitatorRepo { return &FacilitatorRepo{DB: db} }

const facilitatorCols = "id, name, email, phone, password_hash, google_id, created_at"

func scanFacilitator(row *sql.Row) (model.Facilitator, error) {
	var f model.Facilitator
	var gid sql.NullString
	err := row.Scan(&f.ID, &f.Name, &f.Email, &f.Phone, &f.PasswordHash, &gid, &f.CreatedAt)
	if err != nil {
		return model.Facilitator{}, err
	}
	if gid.Valid {
		g := gid.String
		f.GoogleID = &g
	}
	return f, nil
}

// Create inserts a facilitator and returns its ID. A 1062 duplicate-key
// violation maps to ErrEmailExists; email is the only unique column here.
func (r *FacilitatorRepo) Create(ctx context.Context, email, name, phone, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO facilitators (name, email, phone, password_hash) VALUES (?,?,?,?)",
		name, email, phone, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a facilitator by normalized email.
func (r *FacilitatorRepo) GetByEmail(ctx context.Context, email string) (model.Facilitator, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanFacilitator(r.DB.QueryRowContext(ctx,
		"SELECT "+facilitatorCols+" FROM facilitators WHERE email=? LIMIT 1", email))
}

// GetByID fetches a facilitator by id.
func (r *FacilitatorRepo) GetByID(ctx context.Context, id uint64) (model.Facilitator, error) {
	return scanFacilitator(r.DB.QueryRowContext(ctx,
		"SELECT "+facilitatorCols+" FROM facilitators WHERE id=? LIMIT 1", id))
}

// UpdateGoogleID relinks the external subject id for an existing facilitator.
func (r *FacilitatorRepo) UpdateGoogleID(ctx context.Context, id uint64, googleID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE facilitators SET google_id=? WHERE id=?", googleID, id)
	return err
}
