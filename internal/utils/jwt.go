package utils // helpers for token creation and password hashing

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stagedoor/talent-booking/internal/model"
)

// AccessToken is a signed HS256 JWT plus its expiry.  The token
// carries the user id as subject and the role as a claim; the JWT
// middleware resolves both on every request, which is the service's
// entire identity directory.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an access token for a user.  Claims:
// subject (sub), role, expiration (exp) and issued at (iat).
func NewAccessToken(secret string, userID uint64, role model.Role, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
