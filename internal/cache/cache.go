package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the cache interface
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, pattern string) error
}

// MembershipKey caches a user's resolved membership in one clinic.
func MembershipKey(clinicID, userID string) string {
	return "membership:" + clinicID + ":" + userID
}

// MembershipPattern matches every cached membership of a clinic, for
// invalidation when roles change.
func MembershipPattern(clinicID string) string {
	return "membership:" + clinicID + ":*"
}

// AnalyticsKey caches a computed analytics result for a clinic.
func AnalyticsKey(clinicID, report string) string {
	return "analytics:" + clinicID + ":" + report
}

// AnalyticsPattern matches every cached analytics result of a clinic.
func AnalyticsPattern(clinicID string) string {
	return "analytics:" + clinicID + ":*"
}

// WorkPatternKey caches the detected working-day pattern of a clinic.
func WorkPatternKey(clinicID string) string {
	return "workpattern:" + clinicID
}
