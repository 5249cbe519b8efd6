// Package notify implements the synchronous call to the notification
// receiver service. The call sits inside the booking transaction, so it
// is strictly time-bounded: a slow or unreachable receiver fails the
// booking instead of holding the transaction open.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// EventSessionBooked is the fixed event tag carried on booking
// notifications.
const EventSessionBooked = "session_booked"

// BookedUser is the structured identity payload inside a notification.
type BookedUser struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// SessionBooked is the wire payload POSTed to the receiver's /notify
// endpoint. FacilitatorID is null for sessions without a facilitator.
type SessionBooked struct {
	SessionID     uint64     `json:"session_id"`
	User          BookedUser `json:"user"`
	Event         string     `json:"event"`
	FacilitatorID *uint64    `json:"facilitator_id"`
}

// Client posts notifications to the receiver with a shared-secret bearer.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

// NewClient builds a client for the receiver at baseURL. The timeout
// bounds the whole call (dial, write, read); timeouts are reported as
// ordinary errors so callers treat them like any failed call.
func NewClient(baseURL, secret string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		http:    &http.Client{Timeout: timeout},
	}
}

// SessionBooked delivers one notification. Any transport error or non-2xx
// status is an error; the caller decides what that means for the booking.
func (c *Client) SessionBooked(ctx context.Context, p SessionBooked) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notify", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify call: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify call: receiver returned %d", resp.StatusCode)
	}
	return nil
}
