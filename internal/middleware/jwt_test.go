package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-session-booking/internal/model"
	"github.com/iliyamo/event-session-booking/internal/utils"
)

type fakeResolver struct {
	identities map[model.Role]map[uint64]model.Identity
}

func (f *fakeResolver) Resolve(_ context.Context, role model.Role, id uint64) (model.Identity, error) {
	if ident, ok := f.identities[role][id]; ok {
		return ident, nil
	}
	return model.Identity{}, sql.ErrNoRows
}

func newAuthEcho(secret string, r IdentityResolver) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		ident, ok := CurrentIdentity(c)
		if !ok {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no identity"})
		}
		return c.JSON(http.StatusOK, echo.Map{"role": string(ident.Role), "id": ident.ID})
	}, JWTAuth(secret, r))
	return e
}

func doAuthReq(e *echo.Echo, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthResolvesUser(t *testing.T) {
	resolver := &fakeResolver{identities: map[model.Role]map[uint64]model.Identity{
		model.RoleUser: {2: {Role: model.RoleUser, ID: 2, Name: "alice"}},
	}}
	e := newAuthEcho("secret", resolver)

	tok, err := utils.NewIdentityToken("secret", model.RoleUser, 2, 15)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	rec := doAuthReq(e, "Bearer "+tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestJWTAuthResolvesFacilitator(t *testing.T) {
	resolver := &fakeResolver{identities: map[model.Role]map[uint64]model.Identity{
		model.RoleFacilitator: {7: {Role: model.RoleFacilitator, ID: 7, Name: "frank"}},
	}}
	e := newAuthEcho("secret", resolver)

	tok, err := utils.NewIdentityToken("secret", model.RoleFacilitator, 7, 15)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	rec := doAuthReq(e, "Bearer "+tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestJWTAuthMissingHeader(t *testing.T) {
	e := newAuthEcho("secret", &fakeResolver{})
	if rec := doAuthReq(e, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	e := newAuthEcho("secret", &fakeResolver{})
	tok, err := utils.NewIdentityToken("secret", model.RoleUser, 2, -1)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	rec := doAuthReq(e, "Bearer "+tok.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "token expired") {
		t.Fatalf("expected distinct expired body, got %s", body)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	e := newAuthEcho("secret", &fakeResolver{})
	tok, err := utils.NewIdentityToken("other", model.RoleUser, 2, 15)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	rec := doAuthReq(e, "Bearer "+tok.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "invalid token") {
		t.Fatalf("expected distinct invalid body, got %s", body)
	}
}

func TestJWTAuthDeletedIdentity(t *testing.T) {
	e := newAuthEcho("secret", &fakeResolver{}) // resolver knows nobody
	tok, err := utils.NewIdentityToken("secret", model.RoleUser, 2, 15)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	rec := doAuthReq(e, "Bearer "+tok.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted identity, got %d", rec.Code)
	}
}
