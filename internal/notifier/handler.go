// Package notifier implements the notification receiver service. It
// accepts the booking platform's synchronous webhook, persists every
// delivery and acknowledges it; the booking commit on the caller's side
// is gated on that acknowledgement.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-session-booking/internal/model"
)

// NotificationStore persists accepted deliveries. The SQL implementation
// writes to the notifications table; tests substitute fakes.
type NotificationStore interface {
	Save(ctx context.Context, n model.Notification) error
}

// Handler serves the receiver's endpoints.
type Handler struct {
	Secret string // shared-secret bearer; empty disables the check
	Store  NotificationStore
}

func NewHandler(secret string, store NotificationStore) *Handler {
	return &Handler{Secret: secret, Store: store}
}

// notifyBody decodes the webhook with per-field presence tracking so a
// missing field can be reported by name. facilitator_id must be present
// but is legitimately null for sessions without a facilitator.
type notifyBody struct {
	SessionID uint64 `json:"session_id"`
	User      struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	Event         string  `json:"event"`
	FacilitatorID *uint64 `json:"facilitator_id"`
}

func missingFields(raw map[string]json.RawMessage) []string {
	var missing []string
	for _, f := range []string{"session_id", "user", "event"} {
		if v, ok := raw[f]; !ok || string(v) == "null" {
			missing = append(missing, f)
		}
	}
	if _, ok := raw["facilitator_id"]; !ok {
		missing = append(missing, "facilitator_id")
	}
	return missing
}

// Notify ingests one booking notification.
// POST /notify
func (h *Handler) Notify(c echo.Context) error {
	if h.Secret != "" {
		header := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || strings.TrimPrefix(header, "Bearer ") != h.Secret {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid notification secret"})
		}
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if missing := missingFields(raw); len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": fmt.Sprintf("Missing fields: %s", strings.Join(missing, ", ")),
		})
	}

	full, err := json.Marshal(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var body notifyBody
	if err := json.Unmarshal(full, &body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SessionID == 0 || body.User.ID == 0 || body.User.Name == "" || body.Event == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field values"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	n := model.Notification{
		SessionID:     body.SessionID,
		UserPayload:   string(raw["user"]),
		Event:         body.Event,
		FacilitatorID: body.FacilitatorID,
	}
	if err := h.Store.Save(ctx, n); err != nil {
		// A failed save must not acknowledge: the caller rolls the
		// booking back and may retry.
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store notification"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Facilitator notified and stored"})
}
