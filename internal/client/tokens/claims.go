package tokens

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/elibrary/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of access-token claims the client displays.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Inspect decodes an access token without verifying its signature. The
// result is for display only; the server remains the authority.
func Inspect(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims, nil
}

// ExpiresIn reports the time left until expiry; ok=false when the token has
// no expiry claim.
func (c *Claims) ExpiresIn(now time.Time) (time.Duration, bool) {
	if c.ExpiresAt == nil {
		return 0, false
	}
	return c.ExpiresAt.Sub(now), true
}
