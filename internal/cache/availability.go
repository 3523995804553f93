package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verastro/roombroker/internal/domain"
)

// AvailabilityCache composes the local and the shared tier. Writes go to
// both; reads try local first, then shared, backfilling local on a shared
// hit. Shared-tier errors degrade to local-only and are logged, never
// returned: temporary staleness beats an unavailable search flow.
type AvailabilityCache struct {
	local       Tier
	shared      Tier
	backfillTTL time.Duration
	logger      *zap.Logger
}

func NewAvailabilityCache(local, shared Tier, backfillTTL time.Duration, logger *zap.Logger) *AvailabilityCache {
	return &AvailabilityCache{
		local:       local,
		shared:      shared,
		backfillTTL: backfillTTL,
		logger:      logger,
	}
}

func (c *AvailabilityCache) Put(ctx context.Context, searchID uuid.UUID, state *domain.SearchState, ttl time.Duration) error {
	return c.put(ctx, SearchKey(searchID), state, ttl)
}

func (c *AvailabilityCache) Get(ctx context.Context, searchID uuid.UUID) (*domain.SearchState, bool) {
	var state domain.SearchState
	if !c.get(ctx, SearchKey(searchID), &state) {
		return nil, false
	}
	return &state, true
}

func (c *AvailabilityCache) PutResult(ctx context.Context, searchID uuid.UUID, result *domain.CachedAvailabilityResult, ttl time.Duration) error {
	return c.put(ctx, ResultKey(searchID, result.ResultID), result, ttl)
}

func (c *AvailabilityCache) GetResult(ctx context.Context, searchID, resultID uuid.UUID) (*domain.CachedAvailabilityResult, bool) {
	var result domain.CachedAvailabilityResult
	if !c.get(ctx, ResultKey(searchID, resultID), &result) {
		return nil, false
	}
	return &result, true
}

func (c *AvailabilityCache) PutEvaluation(ctx context.Context, record *domain.BookingEvaluationRecord, ttl time.Duration) error {
	return c.put(ctx, EvaluationKey(record.SearchID, record.ResultID, record.RoomContractSetID), record, ttl)
}

func (c *AvailabilityCache) GetEvaluation(ctx context.Context, searchID, resultID, roomContractSetID uuid.UUID) (*domain.BookingEvaluationRecord, bool) {
	var record domain.BookingEvaluationRecord
	if !c.get(ctx, EvaluationKey(searchID, resultID, roomContractSetID), &record) {
		return nil, false
	}
	return &record, true
}

func (c *AvailabilityCache) put(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.local.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if err := c.shared.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("shared cache tier write failed, entry is local-only",
			zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (c *AvailabilityCache) get(ctx context.Context, key string, dest any) bool {
	found, err := c.local.TryGet(ctx, key, dest)
	if err != nil {
		c.logger.Warn("local cache tier read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return true
	}

	found, err = c.shared.TryGet(ctx, key, dest)
	if err != nil {
		c.logger.Warn("shared cache tier read failed, treating as miss",
			zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		return false
	}

	// The shared tier does not report the remaining TTL, so the backfilled
	// local copy gets a short bounded one.
	if err := c.local.Set(ctx, key, dest, c.backfillTTL); err != nil {
		c.logger.Warn("local cache backfill failed", zap.String("key", key), zap.Error(err))
	}
	return true
}
