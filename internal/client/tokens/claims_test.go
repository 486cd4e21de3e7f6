package tokens

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/elibrary/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-server-secret"))
	require.NoError(t, err)
	return s
}

func TestInspect(t *testing.T) {
	now := time.Now()
	token := signed(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute))},
		UserID:           "s1",
		Role:             "student",
	})

	c, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "s1", c.UserID)
	assert.Equal(t, "student", c.Role)

	left, ok := c.ExpiresIn(now)
	require.True(t, ok)
	assert.InDelta(t, (10 * time.Minute).Seconds(), left.Seconds(), 1)
}

func TestInspect_ExpiredTokenStillDecodes(t *testing.T) {
	now := time.Now()
	token := signed(t, Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour))}})

	c, err := Inspect(token)
	require.NoError(t, err)
	left, ok := c.ExpiresIn(now)
	require.True(t, ok)
	assert.Negative(t, left)
}

func TestInspect_NoExpiry(t *testing.T) {
	c, err := Inspect(signed(t, Claims{Role: "admin"}))
	require.NoError(t, err)
	_, ok := c.ExpiresIn(time.Now())
	assert.False(t, ok)
}

func TestInspect_Garbage(t *testing.T) {
	_, err := Inspect("opaque-token")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
