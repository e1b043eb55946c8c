package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
)

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService fronts Redis for week-view payloads. Every method is a
// best-effort operation: cache failures are logged and swallowed so the
// request path never depends on Redis being up.
type CacheService struct {
	store   cacheStore
	ttl     time.Duration
	enabled bool
	logger  *zap.Logger
	metrics *MetricsService
}

// NewCacheService instantiates CacheService.
func NewCacheService(store cacheStore, ttl time.Duration, enabled bool, logger *zap.Logger, metrics *MetricsService) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CacheService{store: store, ttl: ttl, enabled: enabled, logger: logger, metrics: metrics}
}

// Get loads a cached payload into dest. Returns false on miss, disabled
// cache or error.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.enabled || s.store == nil {
		return false
	}
	err := s.store.Get(ctx, key, dest)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false)
		}
		return false
	}
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(true)
	}
	return true
}

// Set stores a payload under the configured TTL.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) {
	if !s.enabled || s.store == nil {
		return
	}
	if err := s.store.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every cached week view. Called after any lesson
// mutation; the next read repopulates.
func (s *CacheService) Invalidate(ctx context.Context) {
	if !s.enabled || s.store == nil {
		return
	}
	if err := s.store.DeleteByPattern(ctx, "schedule:*"); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Error(err))
	}
}
