package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	for _, ok := range []string{"ada@example.com", "a.b+c@sub.example.org"} {
		require.NoError(t, validateEmail(ok), ok)
	}
	for _, bad := range []string{"", "ada", "Ada <ada@example.com>", "ada@"} {
		require.ErrorIs(t, validateEmail(bad), errInvalidEmail, bad)
	}
}

func TestValidateRegistration(t *testing.T) {
	require.ErrorIs(t, validateRegistration(" A ", "ada@example.com", "Password1", true), errNameTooShort)
	require.ErrorIs(t, validateRegistration("Ada", "nope", "Password1", true), errInvalidEmail)
	require.EqualError(t, validateRegistration("Ada", "ada@example.com", "password1", true),
		"Password must contain at least one uppercase letter, one lowercase letter, and one number")
	require.ErrorIs(t, validateRegistration("Ada", "ada@example.com", "Password1", false), errTermsNotAccepted)
	require.NoError(t, validateRegistration("Ada", "ada@example.com", "Password1", true))
}

func TestValidatePasswordReset(t *testing.T) {
	require.ErrorIs(t, validatePasswordReset("short", "short"), errPasswordTooShort)
	require.ErrorIs(t, validatePasswordReset("Password1", "Password2"), errPasswordsMismatch)
	require.NoError(t, validatePasswordReset("Password1", "Password1"))
}

func TestRateLimiter_PerKeyAndEviction(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{PerMinute: 1, CleanupInterval: time.Minute}, nil)
	defer rl.Stop()

	require.True(t, rl.Allow("a"))
	require.False(t, rl.Allow("a"))
	require.True(t, rl.Allow("b"))
	require.Equal(t, 2, rl.Len())

	require.Zero(t, rl.evictIdle(time.Now()))
	require.Equal(t, 2, rl.evictIdle(time.Now().Add(3*time.Minute)))
	require.Zero(t, rl.Len())
}
