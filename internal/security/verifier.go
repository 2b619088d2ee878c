package security

import (
	"crypto"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or
	// signed by the wrong key.
	ErrInvalidToken = errors.New("invalid token")
)

// TokenVerifier validates access tokens issued by the authentication
// collaborator. This service never issues tokens; it only checks the
// signature and claims and extracts the subject user id.
type TokenVerifier struct {
	publicKey crypto.PublicKey
	issuer    string
	audience  string
}

// NewTokenVerifier returns a TokenVerifier for RS256/ES256 tokens signed by
// the key pair whose public half is given. issuer and audience are required
// claims.
func NewTokenVerifier(publicKey crypto.PublicKey, issuer, audience string) *TokenVerifier {
	return &TokenVerifier{publicKey: publicKey, issuer: issuer, audience: audience}
}

// Verify parses and validates the access token (signature, exp, iss, aud)
// and returns the subject user id.
func (v *TokenVerifier) Verify(tokenString string) (userID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			return v.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); ok {
			return v.publicKey, nil
		}
		return nil, ErrInvalidToken
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Issuer != v.issuer {
		return "", ErrInvalidToken
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == v.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
