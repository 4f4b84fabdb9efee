package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is the credential pair issued by the Listonic token endpoint
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	IssuedAt     time.Time
}

// IsZero reports whether no access token is present
func (t Token) IsZero() bool {
	return t.AccessToken == ""
}

// ValidAt reports whether the access token can still be used at now, keeping margin before expiry
func (t Token) ValidAt(now time.Time, margin time.Duration) bool {
	if t.IsZero() {
		return false
	}
	return now.Before(t.ExpiresAt.Add(-margin))
}

// Usable reports whether the access token can still be used at now. The
// margin is SafetyMargin, capped at half the token's lifetime so short-lived
// tokens are not renewed on every call.
func (t Token) Usable(now time.Time) bool {
	return t.ValidAt(now, t.margin())
}

func (t Token) margin() time.Duration {
	if t.IssuedAt.IsZero() {
		return SafetyMargin
	}
	half := max(t.ExpiresAt.Sub(t.IssuedAt)/2, 0)
	return min(SafetyMargin, half)
}

// TokenStore holds the current token for a session. It is never written to disk.
type TokenStore struct {
	mu    sync.RWMutex
	token Token
}

// Get returns a copy of the current token
func (s *TokenStore) Get() Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the current token
func (s *TokenStore) Set(token Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear drops the current token
func (s *TokenStore) Clear() {
	s.Set(Token{})
}

// expiryFromJWT reads the exp claim of an access token without verifying its signature
func expiryFromJWT(accessToken string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
