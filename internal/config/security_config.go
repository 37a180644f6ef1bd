package config

import "time"

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetIdleSessionTTL() time.Duration
	GetGuardWait() time.Duration
	GetEnableRateLimiting() bool
	GetAuthSubmitsPerMinute() int
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetMaxSessionAge is the lifetime of the browser context cookie
func (Security) GetMaxSessionAge() time.Duration {
	return GetDuration("SESSION_MAX_AGE", 30*24*time.Hour)
}

// GetIdleSessionTTL is how long an unused browser context stays in memory
func (Security) GetIdleSessionTTL() time.Duration {
	return GetDuration("SESSION_IDLE_TTL", 30*time.Minute)
}

// GetGuardWait bounds how long a guarded page waits for the startup session check
func (Security) GetGuardWait() time.Duration {
	return GetDuration("GUARD_WAIT", 2*time.Second)
}

func (Security) GetEnableRateLimiting() bool {
	return GetBool("RATE_LIMIT_ENABLED", true)
}

func (Security) GetAuthSubmitsPerMinute() int {
	return GetInt("AUTH_SUBMITS_PER_MINUTE", 10)
}
