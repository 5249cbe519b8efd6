package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-session-booking/internal/model"
	"github.com/iliyamo/event-session-booking/internal/repository"
	"github.com/iliyamo/event-session-booking/internal/utils"
)

type fakeUserCreds struct {
	createErr error
	created   []string
	byLogin   map[string]model.User // keyed by email and by username
}

func (f *fakeUserCreds) Create(_ context.Context, email, username, _, _ string, _ int) (uint64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.created = append(f.created, email)
	return 1, nil
}

func (f *fakeUserCreds) GetByEmailOrUsername(_ context.Context, identifier string) (model.User, error) {
	if u, ok := f.byLogin[identifier]; ok {
		return u, nil
	}
	return model.User{}, sql.ErrNoRows
}

type fakeFacCreds struct {
	createErr error
	created   []string
	byEmail   map[string]model.Facilitator
}

func (f *fakeFacCreds) Create(_ context.Context, email, _, _, _ string, _ int) (uint64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.created = append(f.created, email)
	return 1, nil
}

func (f *fakeFacCreds) GetByEmail(_ context.Context, email string) (model.Facilitator, error) {
	if fac, ok := f.byEmail[email]; ok {
		return fac, nil
	}
	return model.Facilitator{}, sql.ErrNoRows
}

func authReq(t *testing.T, fn echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := fn(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestRegisterUser(t *testing.T) {
	users := &fakeUserCreds{}
	h := NewAuthHandler(oauthCfg(), users, &fakeFacCreds{})

	rec := authReq(t, h.Register, `{"role":"user","username":"a","email":"a@x.com","password":"longpass1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "User registered successfully") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if len(users.created) != 1 || users.created[0] != "a@x.com" {
		t.Fatalf("expected one created user, got %v", users.created)
	}
}

func TestRegisterFacilitator(t *testing.T) {
	facs := &fakeFacCreds{}
	h := NewAuthHandler(oauthCfg(), &fakeUserCreds{}, facs)

	rec := authReq(t, h.Register, `{"role":"facilitator","name":"Frank","email":"f@x.com","phone":"123","password":"longpass1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Facilitator registered successfully") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if len(facs.created) != 1 {
		t.Fatalf("expected one created facilitator, got %v", facs.created)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := NewAuthHandler(oauthCfg(), &fakeUserCreds{createErr: repository.ErrEmailExists}, &fakeFacCreds{})

	rec := authReq(t, h.Register, `{"role":"user","username":"a","email":"a@x.com","password":"longpass1"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", rec.Code)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	h := NewAuthHandler(oauthCfg(), &fakeUserCreds{createErr: repository.ErrUsernameExists}, &fakeFacCreds{})

	rec := authReq(t, h.Register, `{"role":"user","username":"a","email":"b@x.com","password":"longpass1"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "username") {
		t.Fatalf("expected the username named in the body, got %s", rec.Body.String())
	}
}

func TestRegisterMissingFields(t *testing.T) {
	h := NewAuthHandler(oauthCfg(), &fakeUserCreds{}, &fakeFacCreds{})

	// Missing username, missing password, missing phone.
	cases := []string{
		`{"role":"user","email":"a@x.com","password":"longpass1"}`,
		`{"role":"user","username":"a","email":"a@x.com"}`,
		`{"role":"facilitator","name":"F","email":"f@x.com","password":"p"}`,
	}
	for _, body := range cases {
		if rec := authReq(t, h.Register, body); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestRegisterMissingRole(t *testing.T) {
	users := &fakeUserCreds{}
	h := NewAuthHandler(oauthCfg(), users, &fakeFacCreds{})

	rec := authReq(t, h.Register, `{"username":"a","email":"a@x.com","password":"longpass1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing role, got %d", rec.Code)
	}
	if rec := authReq(t, h.Register, `{"role":"admin","email":"a@x.com","password":"p"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", rec.Code)
	}
	if len(users.created) != 0 {
		t.Fatalf("nothing may be created without a valid role")
	}
}

func TestLoginUser(t *testing.T) {
	hash, err := utils.HashPassword("longpass1", 4)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	alice := model.User{ID: 2, Username: "alice", Email: "a@x.com", PasswordHash: hash}
	users := &fakeUserCreds{byLogin: map[string]model.User{"a@x.com": alice, "alice": alice}}
	h := NewAuthHandler(oauthCfg(), users, &fakeFacCreds{})

	for _, body := range []string{
		`{"role":"user","email":"a@x.com","password":"longpass1"}`,
		`{"role":"user","username":"alice","password":"longpass1"}`,
	} {
		rec := authReq(t, h.Login, body)
		if rec.Code != http.StatusOK {
			t.Fatalf("body %s: expected 200, got %d: %s", body, rec.Code, rec.Body.String())
		}
		var resp struct {
			Message  string `json:"message"`
			Token    string `json:"token"`
			UserID   uint64 `json:"userId"`
			Username string `json:"username"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if resp.Message != "Login successful" || resp.Token == "" || resp.UserID != 2 || resp.Username != "alice" {
			t.Fatalf("unexpected body: %+v", resp)
		}
	}
}

func TestLoginFacilitator(t *testing.T) {
	hash, err := utils.HashPassword("longpass1", 4)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	facs := &fakeFacCreds{byEmail: map[string]model.Facilitator{
		"f@x.com": {ID: 7, Name: "Frank", Email: "f@x.com", PasswordHash: hash},
	}}
	h := NewAuthHandler(oauthCfg(), &fakeUserCreds{}, facs)

	rec := authReq(t, h.Login, `{"role":"facilitator","email":"f@x.com","password":"longpass1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Message       string `json:"message"`
		FacilitatorID uint64 `json:"facilitatorId"`
		Name          string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Message != "Facilitator login successful" || resp.FacilitatorID != 7 || resp.Name != "Frank" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	hash, err := utils.HashPassword("longpass1", 4)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	users := &fakeUserCreds{byLogin: map[string]model.User{
		"a@x.com": {ID: 2, Username: "alice", PasswordHash: hash},
	}}
	h := NewAuthHandler(oauthCfg(), users, &fakeFacCreds{})

	// Wrong password and unknown account answer the same way.
	for _, body := range []string{
		`{"role":"user","email":"a@x.com","password":"wrongpass"}`,
		`{"role":"user","email":"nobody@x.com","password":"longpass1"}`,
		`{"role":"facilitator","email":"nobody@x.com","password":"longpass1"}`,
	} {
		rec := authReq(t, h.Login, body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("body %s: expected 401, got %d", body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "invalid credentials") {
			t.Fatalf("unexpected 401 body: %s", rec.Body.String())
		}
	}
}

func TestLoginMissingRole(t *testing.T) {
	h := NewAuthHandler(oauthCfg(), &fakeUserCreds{}, &fakeFacCreds{})

	if rec := authReq(t, h.Login, `{"email":"a@x.com","password":"longpass1"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing role, got %d", rec.Code)
	}
	if rec := authReq(t, h.Login, `{"role":"user","email":"a@x.com"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", rec.Code)
	}
}
