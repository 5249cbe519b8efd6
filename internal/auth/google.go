// Package auth wraps the Google authorization-code flow. It hides the
// oauth2/oidc plumbing behind a small interface so handlers can be tested
// with fakes and so the verification policy (signature, audience, nonce
// claim) lives in one place.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// ErrUnverified is returned when the provider's ID token fails
// verification: bad signature, wrong issuer, or an audience that does not
// match the configured client id. Handlers answer 401.
var ErrUnverified = errors.New("id token verification failed")

// ErrIncompleteClaims is returned when a verified ID token lacks one of
// the claims the platform requires (email, subject, name). Handlers
// answer 400.
var ErrIncompleteClaims = errors.New("incomplete identity claims")

// Claims is the verified identity claim set extracted from a Google ID
// token. Nonce echoes the value the login initiation bound to this
// attempt; the callback handler compares it against the stored one.
type Claims struct {
	Email   string
	Name    string
	Subject string
	Nonce   string
}

// GoogleFlow drives the redirect and code-exchange legs against Google.
type GoogleFlow struct {
	conf     *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogleFlow discovers Google's OIDC endpoints and builds the flow.
// The verifier is pinned to clientID, so Exchange rejects tokens minted
// for any other audience.
func NewGoogleFlow(ctx context.Context, clientID, clientSecret, redirectURL string) (*GoogleFlow, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	return &GoogleFlow{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// AuthCodeURL returns the provider redirect target carrying the state and
// nonce for one login attempt.
func (g *GoogleFlow) AuthCodeURL(state, nonce string) string {
	return g.conf.AuthCodeURL(state, oidc.Nonce(nonce))
}

// Exchange trades the authorization code for tokens, verifies the ID
// token and extracts the claim set. All verification failures map to
// ErrUnverified; a verified token missing email, subject or name maps to
// ErrIncompleteClaims.
func (g *GoogleFlow) Exchange(ctx context.Context, code string) (Claims, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return Claims{}, fmt.Errorf("code exchange: %w", err)
	}
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return Claims{}, fmt.Errorf("%w: no id_token in token response", ErrUnverified)
	}
	idTok, err := g.verifier.Verify(ctx, rawID)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrUnverified, err)
	}
	var payload struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Nonce string `json:"nonce"`
	}
	if err := idTok.Claims(&payload); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrUnverified, err)
	}
	c := Claims{
		Email:   payload.Email,
		Name:    payload.Name,
		Subject: idTok.Subject,
		Nonce:   payload.Nonce,
	}
	if c.Email == "" || c.Subject == "" || c.Name == "" {
		return Claims{}, ErrIncompleteClaims
	}
	return c, nil
}
