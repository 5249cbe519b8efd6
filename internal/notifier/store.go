package notifier

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-session-booking/internal/model"
)

// SQLStore persists notifications to the `notifications` table.
type SQLStore struct{ DB *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{DB: db} }

// Save inserts one notification. received_at is set by the database.
func (s *SQLStore) Save(ctx context.Context, n model.Notification) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO notifications (session_id, user_payload, event, facilitator_id) VALUES (?,?,?,?)",
		n.SessionID, n.UserPayload, n.Event, n.FacilitatorID)
	return err
}
