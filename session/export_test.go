package session

import "time"

// EvictIdle exposes the cleanup pass to tests
func (r *Registry) EvictIdle(now time.Time) int {
	return r.evictIdle(now)
}
