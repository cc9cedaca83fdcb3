package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// RateLimitKey is the per-caller request counter for the current window.
func RateLimitKey(subject string) string {
	return fmt.Sprintf("ratelimit:%s", subject)
}

// StatsKey holds the dashboard counters for the jobs one admin created.
func StatsKey(adminID uuid.UUID) string {
	return fmt.Sprintf("stats:admin:%s", adminID)
}
