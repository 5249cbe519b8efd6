package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-session-booking/internal/middleware"
	"github.com/iliyamo/event-session-booking/internal/model"
	"github.com/iliyamo/event-session-booking/internal/repository"
)

// EventHandler serves the event and session catalogue plus the booking
// listings and cancellation. Everything here is plain repository reads;
// the coordinated write path lives in BookingHandler.
type EventHandler struct {
	Events   *repository.EventRepo
	Sessions *repository.SessionRepo
	Bookings *repository.BookingRepo
}

func NewEventHandler(e *repository.EventRepo, s *repository.SessionRepo, b *repository.BookingRepo) *EventHandler {
	return &EventHandler{Events: e, Sessions: s, Bookings: b}
}

func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

type eventView struct {
	ID          uint64                     `json:"id"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Date        time.Time                  `json:"date"`
	Location    string                     `json:"location"`
	Sessions    []repository.SessionDetail `json:"sessions"`
}

func (h *EventHandler) eventView(ctx context.Context, e model.Event) (eventView, error) {
	sessions, err := h.Sessions.ListByEvent(ctx, e.ID)
	if err != nil {
		return eventView{}, err
	}
	return eventView{
		ID:          e.ID,
		Title:       e.Name,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Sessions:    sessions,
	}, nil
}

// ListEvents returns every event with its sessions.
// GET /api/events
func (h *EventHandler) ListEvents(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load events"})
	}
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		v, err := h.eventView(ctx, e)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load events"})
		}
		views = append(views, v)
	}
	return c.JSON(http.StatusOK, views)
}

// GetEvent returns one event with its sessions.
// GET /api/events/:id
func (h *EventHandler) GetEvent(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load event"})
	}
	v, err := h.eventView(ctx, e)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load event"})
	}
	return c.JSON(http.StatusOK, v)
}

// ListSessions returns every session with its facilitator.
// GET /api/sessions
func (h *EventHandler) ListSessions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sessions, err := h.Sessions.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load sessions"})
	}
	return c.JSON(http.StatusOK, sessions)
}

type sessionView struct {
	ID          uint64                         `json:"id"`
	Name        string                         `json:"name"`
	StartTime   time.Time                      `json:"start_time"`
	Facilitator *repository.FacilitatorRef     `json:"facilitator"`
	Bookings    []repository.SessionBookingRef `json:"bookings"`
}

// GetSession returns one session with its facilitator and bookings.
// GET /api/sessions/:id
func (h *EventHandler) GetSession(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Sessions.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load session"})
	}
	bookings, err := h.Bookings.ListBySession(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load session"})
	}
	return c.JSON(http.StatusOK, sessionView{
		ID:          d.ID,
		Name:        d.Name,
		StartTime:   d.StartTime,
		Facilitator: d.Facilitator,
		Bookings:    bookings,
	})
}

// ListBookings returns the authenticated user's bookings, newest first.
// GET /api/bookings
func (h *EventHandler) ListBookings(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Bookings.ListByUser(ctx, ident.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load bookings"})
	}
	return c.JSON(http.StatusOK, details)
}

// CancelSession cancels every booking of a session. Bookings transition
// to cancelled and the rows survive; the freed slots become bookable
// again because the unique keys ignore cancelled rows.
// PUT /api/sessions/:id/cancel
func (h *EventHandler) CancelSession(c echo.Context) error {
	if _, ok := middleware.CurrentIdentity(c); !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Sessions.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not cancel session"})
	}
	cancelled, err := h.Bookings.CancelBySession(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not cancel session"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Session cancelled successfully",
		"cancelled": cancelled,
	})
}
