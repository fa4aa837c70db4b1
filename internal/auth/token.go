package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims the client cares about. The token is
// parsed without verification: signature checks are the server's job, the
// client only needs the subject for vote payloads and the expiry to avoid
// sending requests that are certain to bounce.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// InspectToken extracts the claims from an access token without verifying
// its signature.
func InspectToken(token string) (*Claims, error) {
	parser := jwt.NewParser()
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}

// Subject returns the user identifier carried by the token, preferring the
// custom claim over the registered subject.
func (c *Claims) Subject() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// Expired reports whether the token's expiry has passed. Tokens without an
// expiry claim never expire locally.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return now.After(c.ExpiresAt.Time)
}
