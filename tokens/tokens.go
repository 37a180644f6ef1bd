// Package tokens persists the backend's access/refresh token pair for one browser context.
package tokens

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Pair is the credential pair issued by the backend
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"` // Optional, absent stays absent
}

// Valid reports whether the pair carries an access token
func (p *Pair) Valid() bool {
	return p != nil && strings.TrimSpace(p.AccessToken) != ""
}

// OAuth2 converts the pair to a bearer token for outbound requests
func (p *Pair) OAuth2() *oauth2.Token {
	if !p.Valid() {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
	}
}

// Expiry returns the exp claim of a JWT access token. Opaque tokens, and JWTs
// without exp, report ok=false. The signature is not checked; only the backend can do that.
func (p *Pair) Expiry() (time.Time, bool) {
	if !p.Valid() || strings.Count(p.AccessToken, ".") != 2 {
		return time.Time{}, false
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(p.AccessToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the access token is a JWT whose exp has passed at now
func (p *Pair) Expired(now time.Time) bool {
	exp, ok := p.Expiry()
	return ok && !now.Before(exp)
}
