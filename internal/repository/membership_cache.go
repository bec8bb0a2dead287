package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dentia/clinic-api/internal/cache"
	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/metrics"
)

const membershipTTL = 5 * time.Minute

// CachedMembershipSource wraps a membership source with a short-lived
// cache. Role changes invalidate through InvalidateClinic.
type CachedMembershipSource struct {
	inner clinicctx.Source
	cache cache.Cache
}

// NewCachedMembershipSource creates a caching decorator around a source
func NewCachedMembershipSource(inner clinicctx.Source, c cache.Cache) *CachedMembershipSource {
	return &CachedMembershipSource{inner: inner, cache: c}
}

// Membership resolves a single-clinic membership through the cache
func (s *CachedMembershipSource) Membership(ctx context.Context, userID, clinicID uuid.UUID) (*clinicctx.Membership, error) {
	key := cache.MembershipKey(clinicID.String(), userID.String())

	if data, err := s.cache.Get(ctx, key); err == nil {
		metrics.CacheOpsTotal.WithLabelValues("hit").Inc()
		var m clinicctx.Membership
		if err := json.Unmarshal(data, &m); err == nil {
			return &m, nil
		}
	}
	metrics.CacheOpsTotal.WithLabelValues("miss").Inc()

	m, err := s.inner.Membership(ctx, userID, clinicID)
	if err != nil {
		return nil, err
	}
	if m != nil {
		if data, err := json.Marshal(m); err == nil {
			if err := s.cache.Set(ctx, key, data, membershipTTL); err != nil {
				log.Warn().Err(err).Msg("Failed to cache membership")
			}
		}
	}
	return m, nil
}

// Memberships lists all memberships, always from storage. Listings are
// rare compared to per-request single-clinic lookups.
func (s *CachedMembershipSource) Memberships(ctx context.Context, userID uuid.UUID) ([]clinicctx.Membership, error) {
	return s.inner.Memberships(ctx, userID)
}

// InvalidateClinic drops every cached membership of a clinic, for use
// after role or permission changes
func (s *CachedMembershipSource) InvalidateClinic(ctx context.Context, clinicID uuid.UUID) error {
	return s.cache.Clear(ctx, cache.MembershipPattern(clinicID.String()))
}
