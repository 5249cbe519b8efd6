package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-session-booking/internal/booking"
	"github.com/iliyamo/event-session-booking/internal/middleware"
	"github.com/iliyamo/event-session-booking/internal/model"
	"github.com/iliyamo/event-session-booking/internal/repository"
)

// SessionBooker runs the coordinated booking workflow. The booking
// coordinator implements it; tests substitute fakes.
type SessionBooker interface {
	Book(ctx context.Context, ident model.Identity, sessionID, eventID uint64) (model.Booking, error)
}

// BookingHandler serves the coordinated booking endpoint.
type BookingHandler struct {
	Booker SessionBooker
}

func NewBookingHandler(b SessionBooker) *BookingHandler {
	return &BookingHandler{Booker: b}
}

type bookRequest struct {
	SessionID uint64 `json:"sessionId"`
	EventID   uint64 `json:"eventId"`
	UserID    uint64 `json:"userId"`
}

type bookedBooking struct {
	ID        uint64  `json:"id"`
	UserID    *uint64 `json:"user_id"`
	SessionID uint64  `json:"session_id"`
	EventID   uint64  `json:"event_id"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

// Book places a booking for the authenticated identity. The optional
// userId field must match the caller when present; booking on someone
// else's behalf is forbidden. The 502 answer means the facilitator
// notification path was down and nothing was persisted.
// POST /api/events/book
func (h *BookingHandler) Book(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.SessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sessionId is required"})
	}
	if req.UserID != 0 && req.UserID != ident.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot book on behalf of another user"})
	}

	b, err := h.Booker.Book(c.Request().Context(), ident, req.SessionID, req.EventID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		case errors.Is(err, repository.ErrAlreadyBooked):
			return c.JSON(http.StatusConflict, echo.Map{"error": "session already booked"})
		case errors.Is(err, booking.ErrNotifyFailed):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to notify facilitator"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Session booked successfully",
		"booking": bookedBooking{
			ID:        b.ID,
			UserID:    b.UserID,
			SessionID: b.SessionID,
			EventID:   b.EventID,
			Status:    b.Status,
			CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}
