package utils // package utils provides helpers for token creation, hashing and randomness

import (
	"crypto/rand"   // secure random generation for OAuth state and nonces
	"encoding/hex"  // hex encoding of random bytes
	"errors"        // sentinel token errors
	"time"          // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/iliyamo/event-session-booking/internal/model"
)

// Token verification failures are split into two sentinels so handlers can
// answer "token expired" and "invalid token" distinctly.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// IdentityToken is a signed HS256 JWT bound to exactly one identity. The
// claim set carries either "user_id" or "facilitator_id" (never both) plus
// the standard exp/iat claims. Nothing is persisted server-side; the token
// is verified by signature and expiry on every request.
type IdentityToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// roleClaim maps an identity partition to the claim key that names it.
func roleClaim(role model.Role) string {
	if role == model.RoleFacilitator {
		return "facilitator_id"
	}
	return "user_id"
}

// NewIdentityToken builds and signs an HS256 JWT for the given identity
// partition and id. ttlMin is the token lifetime in minutes.
func NewIdentityToken(secret string, role model.Role, id uint64, ttlMin int) (IdentityToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		roleClaim(role): id,
		"exp":           exp.Unix(),
		"iat":           time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return IdentityToken{}, err
	}
	return IdentityToken{Token: signed, Exp: exp}, nil
}

// ParseIdentityToken verifies signature and expiry and returns the identity
// partition and id encoded in the token. A token carrying both claim keys,
// neither, or a non-HMAC signature is rejected with ErrTokenInvalid; an
// expired one with ErrTokenExpired.
func ParseIdentityToken(secret, raw string) (model.Role, uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", 0, ErrTokenExpired
		}
		return "", 0, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", 0, ErrTokenInvalid
	}

	uid, hasUser := claimID(claims, "user_id")
	fid, hasFac := claimID(claims, "facilitator_id")
	switch {
	case hasUser && hasFac:
		// Ambiguous tokens never authorize anything.
		return "", 0, ErrTokenInvalid
	case hasUser:
		return model.RoleUser, uid, nil
	case hasFac:
		return model.RoleFacilitator, fid, nil
	}
	return "", 0, ErrTokenInvalid
}

// claimID reads a numeric claim. JSON numbers decode as float64; ids are
// small enough that the conversion is exact.
func claimID(claims jwt.MapClaims, key string) (uint64, bool) {
	v, ok := claims[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || f < 1 {
		return 0, false
	}
	return uint64(f), true
}

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data. It produces the OAuth state and
// nonce values.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
