// Package booking implements the coordinator that creates a booking while
// synchronously notifying the receiver service. The flow is a saga-lite:
// tentative local write, remote call, then commit or compensate. A booking
// is only considered placed when the notification path was reachable; the
// cost is that a receiver outage blocks booking, which is deliberate.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/event-session-booking/internal/model"
	"github.com/iliyamo/event-session-booking/internal/notify"
	"github.com/iliyamo/event-session-booking/internal/queue"
	"github.com/iliyamo/event-session-booking/internal/repository"
)

// ErrNotifyFailed marks a booking that was rolled back because the
// notification call failed or timed out. Handlers translate it into 502.
var ErrNotifyFailed = errors.New("failed to notify facilitator")

// Tx is the unit of work for one booking attempt. The repository's
// BookingUnit implements it over *sql.Tx; tests substitute fakes to
// exercise the commit and compensation branches.
type Tx interface {
	SessionByID(ctx context.Context, id uint64) (model.Session, error)
	HasActiveBooking(ctx context.Context, ident model.Identity, sessionID uint64) (bool, error)
	InsertBooking(ctx context.Context, b *model.Booking) error
	Commit() error
	Rollback() error
}

// Store opens booking units.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// StoreFunc adapts a begin function to the Store interface.
type StoreFunc func(ctx context.Context) (Tx, error)

func (f StoreFunc) Begin(ctx context.Context) (Tx, error) { return f(ctx) }

// Notifier is the synchronous notification call gating the commit.
type Notifier interface {
	SessionBooked(ctx context.Context, p notify.SessionBooked) error
}

// Coordinator drives the booking workflow. Publish, when non-nil, emits
// the post-commit audit event; its errors are logged, never surfaced.
type Coordinator struct {
	Store         Store
	Notifier      Notifier
	NotifyTimeout time.Duration
	Publish       func(ctx context.Context, ev queue.SessionBookedEvent) error
}

func NewCoordinator(store Store, notifier Notifier, notifyTimeout time.Duration) *Coordinator {
	return &Coordinator{Store: store, Notifier: notifier, NotifyTimeout: notifyTimeout}
}

// Book creates a booking for ident on sessionID. When eventID is non-zero
// the session must belong to that event. The steps from the session load
// through the insert run on one transaction; the transaction commits only
// after the receiver acknowledged the notification, otherwise everything
// rolls back and no booking row survives.
//
// Returned errors: repository.ErrSessionNotFound (absent session or event
// mismatch), repository.ErrAlreadyBooked (active duplicate, from the
// check or the unique-key backstop), ErrNotifyFailed (notification path
// down, booking rolled back), or an internal database error.
func (co *Coordinator) Book(ctx context.Context, ident model.Identity, sessionID, eventID uint64) (model.Booking, error) {
	tx, err := co.Store.Begin(ctx)
	if err != nil {
		return model.Booking{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sess, err := tx.SessionByID(ctx, sessionID)
	if err != nil {
		return model.Booking{}, err
	}
	if eventID != 0 && sess.EventID != eventID {
		// A session reached through the wrong event does not exist from
		// the caller's point of view.
		return model.Booking{}, repository.ErrSessionNotFound
	}

	exists, err := tx.HasActiveBooking(ctx, ident, sessionID)
	if err != nil {
		return model.Booking{}, err
	}
	if exists {
		return model.Booking{}, repository.ErrAlreadyBooked
	}

	b := model.Booking{
		SessionID: sessionID,
		EventID:   sess.EventID,
		Status:    model.StatusBooked,
	}
	id := ident.ID
	if ident.Role == model.RoleFacilitator {
		b.FacilitatorID = &id
	} else {
		b.UserID = &id
	}
	if err := tx.InsertBooking(ctx, &b); err != nil {
		return model.Booking{}, err
	}

	// The remote call is bounded so a slow receiver cannot hold the
	// transaction open; a timeout is treated the same as a refusal.
	nctx, cancel := context.WithTimeout(ctx, co.NotifyTimeout)
	defer cancel()
	if err := co.Notifier.SessionBooked(nctx, notify.SessionBooked{
		SessionID:     sessionID,
		User:          notify.BookedUser{ID: ident.ID, Name: ident.DisplayName()},
		Event:         notify.EventSessionBooked,
		FacilitatorID: sess.FacilitatorID,
	}); err != nil {
		return model.Booking{}, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}
	committed = true

	if co.Publish != nil {
		ev := queue.SessionBookedEvent{
			BookingID:     b.ID,
			SessionID:     sessionID,
			SessionName:   sess.Name,
			EventID:       sess.EventID,
			UserID:        ident.ID,
			UserName:      ident.DisplayName(),
			FacilitatorID: sess.FacilitatorID,
			BookedAt:      time.Now().UTC().Format(time.RFC3339),
		}
		if err := co.Publish(ctx, ev); err != nil {
			log.Printf("booking: audit publish failed for booking %d: %v", b.ID, err)
		}
	}
	return b, nil
}
