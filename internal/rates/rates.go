package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verastro/roombroker/config"
	"github.com/verastro/roombroker/internal/cache"
	"github.com/verastro/roombroker/internal/domain"
)

// ErrRateNotFound means no conversion rate is known for the currency pair.
var ErrRateNotFound = errors.New("conversion rate not found")

// Source looks up the conversion rate for a currency pair. Real FX sourcing
// is behind this interface; the service only needs the lookup.
type Source interface {
	Get(ctx context.Context, from, to domain.Currency) (float64, error)
}

// StaticSource serves rates from a fixed table loaded at startup.
type StaticSource struct {
	rates map[string]float64
}

func NewStaticSource(cfg []config.RateConfig) *StaticSource {
	rates := make(map[string]float64, len(cfg))
	for _, r := range cfg {
		rates[pairKey(domain.Currency(r.From), domain.Currency(r.To))] = r.Rate
	}
	return &StaticSource{rates: rates}
}

func (s *StaticSource) Get(_ context.Context, from, to domain.Currency) (float64, error) {
	rate, ok := s.rates[pairKey(from, to)]
	if !ok {
		return 0, fmt.Errorf("%w: %s to %s", ErrRateNotFound, from, to)
	}
	return rate, nil
}

func pairKey(from, to domain.Currency) string {
	return string(from) + ":" + string(to)
}

// CachedSource caches upstream rates in a cache tier for a bounded time.
// Tier trouble falls through to the upstream source.
type CachedSource struct {
	next   Source
	tier   cache.Tier
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSource(next Source, tier cache.Tier, ttl time.Duration, logger *zap.Logger) *CachedSource {
	return &CachedSource{next: next, tier: tier, ttl: ttl, logger: logger}
}

func (s *CachedSource) Get(ctx context.Context, from, to domain.Currency) (float64, error) {
	key := cache.RateKey(string(from), string(to))

	var cached float64
	found, err := s.tier.TryGet(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("rate cache read failed, falling through to source", zap.String("key", key), zap.Error(err))
	}
	if found {
		return cached, nil
	}

	rate, err := s.next.Get(ctx, from, to)
	if err != nil {
		return 0, err
	}

	if err := s.tier.Set(ctx, key, rate, s.ttl); err != nil {
		s.logger.Warn("rate cache write failed", zap.String("key", key), zap.Error(err))
	}
	return rate, nil
}

var (
	_ Source = (*StaticSource)(nil)
	_ Source = (*CachedSource)(nil)
)
