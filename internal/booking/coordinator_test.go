package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/event-session-booking/internal/model"
	"github.com/iliyamo/event-session-booking/internal/notify"
	"github.com/iliyamo/event-session-booking/internal/queue"
	"github.com/iliyamo/event-session-booking/internal/repository"
)

// fakeTx records which unit-of-work methods ran so tests can assert the
// commit and compensation branches.
type fakeTx struct {
	session    model.Session
	sessionErr error
	hasActive  bool
	insertErr  error

	inserted   *model.Booking
	committed  bool
	rolledBack bool
}

func (f *fakeTx) SessionByID(_ context.Context, id uint64) (model.Session, error) {
	if f.sessionErr != nil {
		return model.Session{}, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeTx) HasActiveBooking(_ context.Context, _ model.Identity, _ uint64) (bool, error) {
	return f.hasActive, nil
}

func (f *fakeTx) InsertBooking(_ context.Context, b *model.Booking) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	b.ID = 101
	b.CreatedAt = time.Now().UTC()
	f.inserted = b
	return nil
}

func (f *fakeTx) Commit() error   { f.committed = true; return nil }
func (f *fakeTx) Rollback() error { f.rolledBack = true; return nil }

type fakeNotifier struct {
	err  error
	sent []notify.SessionBooked
}

func (f *fakeNotifier) SessionBooked(_ context.Context, p notify.SessionBooked) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, p)
	return nil
}

func facilitator(id uint64) *uint64 { return &id }

func newCoordinator(tx *fakeTx, n Notifier) *Coordinator {
	store := StoreFunc(func(ctx context.Context) (Tx, error) { return tx, nil })
	return NewCoordinator(store, n, time.Second)
}

var alice = model.Identity{Role: model.RoleUser, ID: 2, Name: "alice", Email: "a@x.com"}

func TestBookSuccessCommitsAndNotifies(t *testing.T) {
	tx := &fakeTx{session: model.Session{ID: 5, EventID: 9, Name: "intro", FacilitatorID: facilitator(3)}}
	n := &fakeNotifier{}
	co := newCoordinator(tx, n)

	var published []queue.SessionBookedEvent
	co.Publish = func(_ context.Context, ev queue.SessionBookedEvent) error {
		published = append(published, ev)
		return nil
	}

	b, err := co.Book(context.Background(), alice, 5, 9)
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if b.ID != 101 || b.Status != model.StatusBooked {
		t.Fatalf("unexpected booking: %+v", b)
	}
	if b.UserID == nil || *b.UserID != 2 || b.FacilitatorID != nil {
		t.Fatalf("expected user-owned booking, got %+v", b)
	}
	if !tx.committed || tx.rolledBack {
		t.Fatalf("expected commit without rollback (committed=%v rolledBack=%v)", tx.committed, tx.rolledBack)
	}
	if len(n.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(n.sent))
	}
	sent := n.sent[0]
	if sent.SessionID != 5 || sent.Event != "session_booked" || sent.User.Name != "alice" {
		t.Fatalf("unexpected notification: %+v", sent)
	}
	if sent.FacilitatorID == nil || *sent.FacilitatorID != 3 {
		t.Fatalf("expected facilitator_id 3, got %v", sent.FacilitatorID)
	}
	if len(published) != 1 || published[0].BookingID != 101 {
		t.Fatalf("expected one audit event for booking 101, got %+v", published)
	}
}

func TestBookNotifyFailureRollsBack(t *testing.T) {
	tx := &fakeTx{session: model.Session{ID: 5, EventID: 9}}
	co := newCoordinator(tx, &fakeNotifier{err: errors.New("connection refused")})

	_, err := co.Book(context.Background(), alice, 5, 9)
	if !errors.Is(err, ErrNotifyFailed) {
		t.Fatalf("expected ErrNotifyFailed, got %v", err)
	}
	if tx.committed {
		t.Fatalf("booking must not commit when notification fails")
	}
	if !tx.rolledBack {
		t.Fatalf("expected rollback after notify failure")
	}
	if tx.inserted == nil {
		t.Fatalf("expected tentative insert before the notify call")
	}
}

func TestBookDuplicateConflicts(t *testing.T) {
	tx := &fakeTx{session: model.Session{ID: 5, EventID: 9}, hasActive: true}
	n := &fakeNotifier{}
	co := newCoordinator(tx, n)

	_, err := co.Book(context.Background(), alice, 5, 9)
	if !errors.Is(err, repository.ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}
	if tx.inserted != nil || tx.committed {
		t.Fatalf("no insert or commit may happen for a duplicate")
	}
	if !tx.rolledBack {
		t.Fatalf("expected rollback on duplicate")
	}
	if len(n.sent) != 0 {
		t.Fatalf("no notification may be sent for a duplicate")
	}
}

func TestBookInsertRaceConflicts(t *testing.T) {
	// Two requests pass the existence check concurrently; the second
	// insert trips the unique key and must surface as a conflict.
	tx := &fakeTx{session: model.Session{ID: 5, EventID: 9}, insertErr: repository.ErrAlreadyBooked}
	co := newCoordinator(tx, &fakeNotifier{})

	_, err := co.Book(context.Background(), alice, 5, 9)
	if !errors.Is(err, repository.ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked from unique-key backstop, got %v", err)
	}
	if tx.committed || !tx.rolledBack {
		t.Fatalf("expected rollback without commit")
	}
}

func TestBookSessionMissing(t *testing.T) {
	tx := &fakeTx{sessionErr: repository.ErrSessionNotFound}
	co := newCoordinator(tx, &fakeNotifier{})

	_, err := co.Book(context.Background(), alice, 5, 9)
	if !errors.Is(err, repository.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestBookEventMismatch(t *testing.T) {
	tx := &fakeTx{session: model.Session{ID: 5, EventID: 4}}
	n := &fakeNotifier{}
	co := newCoordinator(tx, n)

	_, err := co.Book(context.Background(), alice, 5, 9)
	if !errors.Is(err, repository.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on event mismatch, got %v", err)
	}
	if tx.inserted != nil || len(n.sent) != 0 {
		t.Fatalf("mismatched event must not insert or notify")
	}
}

func TestBookFacilitatorIdentity(t *testing.T) {
	tx := &fakeTx{session: model.Session{ID: 5, EventID: 9}}
	co := newCoordinator(tx, &fakeNotifier{})

	fac := model.Identity{Role: model.RoleFacilitator, ID: 7, Name: "frank"}
	b, err := co.Book(context.Background(), fac, 5, 0)
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if b.FacilitatorID == nil || *b.FacilitatorID != 7 || b.UserID != nil {
		t.Fatalf("expected facilitator-owned booking, got %+v", b)
	}
	if b.EventID != 9 {
		t.Fatalf("expected event id filled from session, got %d", b.EventID)
	}
}

func TestBookPublishFailureDoesNotFail(t *testing.T) {
	tx := &fakeTx{session: model.Session{ID: 5, EventID: 9}}
	co := newCoordinator(tx, &fakeNotifier{})
	co.Publish = func(_ context.Context, _ queue.SessionBookedEvent) error {
		return errors.New("broker down")
	}

	if _, err := co.Book(context.Background(), alice, 5, 9); err != nil {
		t.Fatalf("audit publish failure must not fail the booking: %v", err)
	}
	if !tx.committed {
		t.Fatalf("expected commit")
	}
}
