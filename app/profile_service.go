package app

import (
	"context"
	"fmt"
	"sync"

	"colprofile/domain/core"
	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
	"colprofile/internal"
	"colprofile/ports"
)

// ProfileService memoizes dataset profiles by content hash so that repeated requests
// for an unchanged dataset and column list skip recomputation
type ProfileService struct {
	provider ports.StatisticsProvider
	logger   *internal.Logger

	mu    sync.Mutex
	memo  map[core.ContentHash]*profiling.DatasetProfile
	stats ProfileCacheStats
}

// ProfileCacheStats counts memo hits and misses
type ProfileCacheStats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

// NewProfileService creates a profile service over provider
func NewProfileService(provider ports.StatisticsProvider, logger *internal.Logger) *ProfileService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ProfileService{
		provider: provider,
		logger:   logger.With("profile-service"),
		memo:     make(map[core.ContentHash]*profiling.DatasetProfile),
	}
}

// Profile returns the profile of the listed columns (all when empty), computing it
// only when the dataset contents or the column list changed since the last call. The
// caller gets its own deep copy, carrying the caller's dataset ID on a cache hit.
func (s *ProfileService) Profile(ctx context.Context, ds *dataset.Dataset, columns []string) (*profiling.DatasetProfile, error) {
	if ds == nil {
		return nil, fmt.Errorf("profile: %w", core.ErrEmptyDataset)
	}
	if len(columns) == 0 {
		columns = ds.Columns
	}
	key := ds.Hash(columns)

	s.mu.Lock()
	if cached, ok := s.memo[key]; ok {
		s.stats.Hits++
		s.mu.Unlock()
		s.logger.Debug("profile cache hit for %s", key.Short())
		hit := cached.Clone()
		hit.DatasetID = ds.ID
		return hit, nil
	}
	s.stats.Misses++
	s.mu.Unlock()

	profile, err := s.provider.Profile(ctx, ds, columns)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.memo[key] = profile
	s.mu.Unlock()
	return profile.Clone(), nil
}

// Statistics returns the per-column statistics keyed by column name
func (s *ProfileService) Statistics(ctx context.Context, ds *dataset.Dataset, columns []string) (map[string]profiling.ColumnStatistics, error) {
	profile, err := s.Profile(ctx, ds, columns)
	if err != nil {
		return nil, err
	}
	return profile.StatisticsByColumn(), nil
}

// Invalidate drops every memoized profile
func (s *ProfileService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memo = make(map[core.ContentHash]*profiling.DatasetProfile)
}

// CacheStats returns a snapshot of the memo counters
func (s *ProfileService) CacheStats() ProfileCacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
