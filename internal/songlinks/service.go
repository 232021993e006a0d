// Package songlinks is the façade the UI layer calls: cache check, miss
// resolution, write-through, one entry point.
package songlinks

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"concerto/internal/links"
	"concerto/internal/normalize"
	"concerto/internal/resolve"
	"concerto/internal/store"
)

// Resolver is the orchestration capability the service depends on.
type Resolver interface {
	Resolve(ctx context.Context, artist, title string) (*links.Record, error)
}

// Service owns the link record lifecycle: cached records with any link are
// served as-is, unresolved records are retried subject to the cooldown
// policy, and every resolution is written through before being returned.
type Service struct {
	store    store.Store
	resolver Resolver

	// retryUnresolvedAfter is the cooldown before an unresolved record is
	// retried. Zero retries on every request, which matches the historical
	// behavior of the webview client this service replaced.
	retryUnresolvedAfter time.Duration

	group singleflight.Group
}

// NewService creates the lifecycle service.
func NewService(st store.Store, resolver Resolver, retryUnresolvedAfter time.Duration) *Service {
	return &Service{
		store:                st,
		resolver:             resolver,
		retryUnresolvedAfter: retryUnresolvedAfter,
	}
}

// GetLinksFor returns the link record for one song. The cached record is
// the dominant path; a miss triggers exactly one resolution and exactly one
// cache mutation, even when resolution finds nothing. Concurrent requests
// for the same key share a single in-flight resolution.
func (s *Service) GetLinksFor(ctx context.Context, artist, title string) (*links.Record, error) {
	if strings.TrimSpace(artist) == "" && strings.TrimSpace(title) == "" {
		return nil, resolve.ErrEmptyQuery
	}

	key := normalize.CacheKey(artist, title)

	if record, ok := s.store.Get(key); ok && s.servable(record) {
		return record, nil
	}

	result, err, shared := s.group.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have resolved
		// and cached this key while we waited for the group slot.
		if record, ok := s.store.Get(key); ok && s.servable(record) {
			return record, nil
		}

		record, err := s.resolver.Resolve(ctx, artist, title)
		if err != nil {
			return nil, err
		}

		// Write-through even for all-null records; that is what prevents a
		// transient provider outage from hammering the providers once per
		// view instead of once per key.
		if err := s.store.Put(ctx, key, record); err != nil {
			slog.Error("Failed to persist link record", "key", key, "error", err)
		}

		return record, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		slog.Debug("Joined in-flight resolution", "key", key)
	}

	return result.(*links.Record), nil
}

// servable reports whether a cached record satisfies the request without a
// new resolution.
func (s *Service) servable(record *links.Record) bool {
	if record.Status != links.StatusUnresolved {
		return true
	}
	return s.retryUnresolvedAfter > 0 && time.Since(record.FetchedAt) < s.retryUnresolvedAfter
}

// CacheStats describes the cache for the admin surface.
type CacheStats struct {
	Backend string `json:"backend"`
	Entries int    `json:"entries"`
	Version string `json:"version"`
}

// Stats reports cache statistics.
func (s *Service) Stats() CacheStats {
	return CacheStats{
		Backend: s.store.Backend(),
		Entries: s.store.Len(),
		Version: links.CacheVersion,
	}
}
