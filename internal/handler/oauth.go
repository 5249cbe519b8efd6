package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-session-booking/internal/auth"
	"github.com/iliyamo/event-session-booking/internal/config"
	"github.com/iliyamo/event-session-booking/internal/model"
	"github.com/iliyamo/event-session-booking/internal/repository"
	"github.com/iliyamo/event-session-booking/internal/utils"
)

// Flow is the provider-facing part of the Google login: building the
// redirect URL and exchanging the callback code for verified claims.
// auth.GoogleFlow implements it; tests substitute fakes.
type Flow interface {
	AuthCodeURL(state, nonce string) string
	Exchange(ctx context.Context, code string) (auth.Claims, error)
}

// NonceStore holds the per-attempt handshake state between the login
// redirect and the callback. Consume must be single-use: a second consume
// of the same state must fail.
type NonceStore interface {
	Put(ctx context.Context, state, nonce string) error
	Consume(ctx context.Context, state string) (string, error)
}

// UserAccounts is the slice of the user repository the callback needs to
// match, link and provision accounts.
type UserAccounts interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	CreateFromGoogle(ctx context.Context, email, username, googleID string, cost int) (uint64, error)
	UpdateGoogleID(ctx context.Context, id uint64, googleID string) error
}

// FacilitatorAccounts is the facilitator-side counterpart of UserAccounts.
type FacilitatorAccounts interface {
	GetByEmail(ctx context.Context, email string) (model.Facilitator, error)
	UpdateGoogleID(ctx context.Context, id uint64, googleID string) error
}

// OAuthHandler serves the Google login flow. Flow and Nonces may be nil
// when the deployment has no Google credentials or no redis; both login
// endpoints then answer 503 instead of starting a handshake that could
// never be verified.
type OAuthHandler struct {
	Cfg          config.Config
	Flow         Flow
	Nonces       NonceStore
	Users        UserAccounts
	Facilitators FacilitatorAccounts
}

func NewOAuthHandler(cfg config.Config, flow Flow, nonces NonceStore, u UserAccounts, f FacilitatorAccounts) *OAuthHandler {
	return &OAuthHandler{Cfg: cfg, Flow: flow, Nonces: nonces, Users: u, Facilitators: f}
}

// GoogleLogin starts a login attempt: it generates the state and nonce,
// stores the pair server-side and redirects to the provider.
// GET /api/login/google
func (h *OAuthHandler) GoogleLogin(c echo.Context) error {
	if h.Flow == nil || h.Nonces == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "google login is not configured"})
	}
	state, err := utils.RandomHex(16)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start login"})
	}
	nonce, err := utils.RandomHex(16)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start login"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Nonces.Put(ctx, state, nonce); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start login"})
	}
	return c.Redirect(http.StatusFound, h.Flow.AuthCodeURL(state, nonce))
}

// GoogleCallback finishes a login attempt. It consumes the stored nonce
// (single use), exchanges the code, verifies the claims against the nonce
// and resolves or provisions the account: users by email first, then
// facilitators, and a fresh user when neither partition matches.
// GET /api/login/google/callback
func (h *OAuthHandler) GoogleCallback(c echo.Context) error {
	if h.Flow == nil || h.Nonces == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "google login is not configured"})
	}
	if e := c.QueryParam("error"); e != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "google login was denied: " + e})
	}
	state := c.QueryParam("state")
	code := c.QueryParam("code")
	if state == "" || code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing state or code"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	nonce, err := h.Nonces.Consume(ctx, state)
	if err != nil {
		if errors.Is(err, repository.ErrNonceNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "login session expired"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	claims, err := h.Flow.Exchange(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnverified):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "identity could not be verified"})
		case errors.Is(err, auth.ErrIncompleteClaims):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "google account is missing required profile fields"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if claims.Nonce != nonce {
		// Replay or a token minted for a different attempt.
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login session mismatch"})
	}

	role, id, username, err := h.resolveAccount(ctx, claims)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	tok, err := utils.NewIdentityToken(h.Cfg.JWTSecret, role, id, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Google login successful",
		"token":    tok.Token,
		"role":     string(role),
		"username": username,
	})
}

// resolveAccount maps verified claims to a local account. Matching order:
// user by email, facilitator by email, then auto-provisioned user. When a
// matched row carries no or a stale subject id the link is refreshed.
func (h *OAuthHandler) resolveAccount(ctx context.Context, claims auth.Claims) (model.Role, uint64, string, error) {
	u, err := h.Users.GetByEmail(ctx, claims.Email)
	if err == nil {
		if u.GoogleID == nil || *u.GoogleID != claims.Subject {
			if err := h.Users.UpdateGoogleID(ctx, u.ID, claims.Subject); err != nil {
				return "", 0, "", err
			}
		}
		return model.RoleUser, u.ID, u.Username, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", 0, "", err
	}

	f, err := h.Facilitators.GetByEmail(ctx, claims.Email)
	if err == nil {
		if f.GoogleID == nil || *f.GoogleID != claims.Subject {
			if err := h.Facilitators.UpdateGoogleID(ctx, f.ID, claims.Subject); err != nil {
				return "", 0, "", err
			}
		}
		return model.RoleFacilitator, f.ID, f.Name, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", 0, "", err
	}

	handle := claims.Name
	id, err := h.Users.CreateFromGoogle(ctx, claims.Email, handle, claims.Subject, h.Cfg.BcryptCost)
	if errors.Is(err, repository.ErrUsernameExists) {
		// The display name is already someone's username; fall back to a
		// handle derived from the email local part plus a random suffix.
		suffix, serr := utils.RandomHex(3)
		if serr != nil {
			return "", 0, "", serr
		}
		handle = emailLocalPart(claims.Email) + "-" + suffix
		id, err = h.Users.CreateFromGoogle(ctx, claims.Email, handle, claims.Subject, h.Cfg.BcryptCost)
	}
	if err != nil {
		return "", 0, "", err
	}
	return model.RoleUser, id, handle, nil
}

func emailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
