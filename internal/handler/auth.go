// Package handler contains the HTTP handlers for the API server. Handlers
// bind and validate the request, delegate to repositories or the booking
// coordinator, and translate sentinel errors into status codes.
package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-session-booking/internal/config"
	"github.com/iliyamo/event-session-booking/internal/middleware"
	"github.com/iliyamo/event-session-booking/internal/model"
	"github.com/iliyamo/event-session-booking/internal/repository"
	"github.com/iliyamo/event-session-booking/internal/utils"
)

// UserCredentials is the slice of the user repository that registration
// and login need. The repository implements it; tests substitute fakes.
type UserCredentials interface {
	Create(ctx context.Context, email, username, name, password string, cost int) (uint64, error)
	GetByEmailOrUsername(ctx context.Context, identifier string) (model.User, error)
}

// FacilitatorCredentials is the facilitator-side counterpart of
// UserCredentials. Facilitators log in by email only.
type FacilitatorCredentials interface {
	Create(ctx context.Context, email, name, phone, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.Facilitator, error)
}

// AuthHandler serves registration, login and the authenticated profile
// endpoint for both identity partitions. The partition is selected by the
// role field of the request body, never inferred from the credentials.
type AuthHandler struct {
	Cfg          config.Config
	Users        UserCredentials
	Facilitators FacilitatorCredentials
}

func NewAuthHandler(cfg config.Config, u UserCredentials, f FacilitatorCredentials) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Facilitators: f}
}

type registerRequest struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register creates an account in the partition named by role.
// POST /api/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch strings.ToLower(strings.TrimSpace(req.Role)) {
	case "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role is required"})

	case "user":
		if req.Username == "" || req.Email == "" || req.Password == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email and password are required"})
		}
		_, err := h.Users.Create(ctx, req.Email, req.Username, req.Name, req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return registerErr(c, err)
		}
		return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully"})

	case "facilitator":
		if req.Name == "" || req.Email == "" || req.Phone == "" || req.Password == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email, phone and password are required"})
		}
		_, err := h.Facilitators.Create(ctx, req.Email, req.Name, req.Phone, req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return registerErr(c, err)
		}
		return c.JSON(http.StatusCreated, echo.Map{"message": "Facilitator registered successfully"})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be user or facilitator"})
}

func registerErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	case errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
}

type loginRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials against one partition and issues an identity
// token. Users may log in with email or username; facilitators by email
// only. Unknown accounts and wrong passwords get the same 401 body.
// POST /api/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != "user" && role != "facilitator" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be user or facilitator"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if role == "facilitator" {
		if req.Email == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
		}
		f, err := h.Facilitators.GetByEmail(ctx, req.Email)
		if err != nil {
			return loginErr(c, err)
		}
		if !utils.VerifyPassword(f.PasswordHash, req.Password) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		tok, err := utils.NewIdentityToken(h.Cfg.JWTSecret, model.RoleFacilitator, f.ID, h.Cfg.AccessTTLMin)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message":       "Facilitator login successful",
			"token":         tok.Token,
			"facilitatorId": f.ID,
			"name":          f.Name,
		})
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email or username is required"})
	}
	u, err := h.Users.GetByEmailOrUsername(ctx, identifier)
	if err != nil {
		return loginErr(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewIdentityToken(h.Cfg.JWTSecret, model.RoleUser, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Login successful",
		"token":    tok.Token,
		"userId":   u.ID,
		"username": u.Username,
	})
}

func loginErr(c echo.Context, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
}

// Me returns the identity resolved by the auth middleware.
// GET /api/me
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"role":  string(ident.Role),
		"id":    ident.ID,
		"name":  ident.Name,
		"email": ident.Email,
	})
}
