package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier validates a bearer credential and yields the user identity it
// carries. Token issuance belongs to the auth service, not this core.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

var ErrInvalidToken = errors.New("invalid or expired token")

// JWTVerifier checks HMAC-signed JWTs and extracts the subject claim.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}
