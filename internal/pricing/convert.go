package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/verastro/roombroker/internal/domain"
	"github.com/verastro/roombroker/internal/rates"
)

// ErrCurrencyUnspecified means the payload carries the "NotSpecified"
// sentinel: conversion is meaningless without a known source currency.
var ErrCurrencyUnspecified = errors.New("source currency is unspecified")

// CeilToCents rounds up to the next cent. Converted supplier amounts are
// never rounded down: an owed amount must not be under-quoted to the buyer.
// Cents are snapped to the nearest micro-cent first so an exact product like
// 100 * 1.2 does not tip over to the next cent on float noise.
func CeilToCents(v float64) float64 {
	cents := math.Round(v*100*1e6) / 1e6
	return math.Ceil(cents) / 100
}

// RateConverter converts prices of one currency pair at a fixed rate.
type RateConverter struct {
	from domain.Currency
	to   domain.Currency
	rate float64
}

func NewRateConverter(from, to domain.Currency, rate float64) RateConverter {
	return RateConverter{from: from, to: to, rate: rate}
}

func (rc RateConverter) Convert(p domain.Price) domain.Price {
	if p.Currency != rc.from {
		return p
	}
	return domain.Price{
		Amount:   CeilToCents(p.Amount * rc.rate),
		Currency: rc.to,
	}
}

// Markup is the configured margin applied on top of the converted supplier
// price before anything is cached or shown.
type Markup struct {
	Percent float64
}

func (m Markup) Apply(p domain.Price) domain.Price {
	if m.Percent == 0 {
		return p
	}
	return domain.Price{
		Amount:   CeilToCents(p.Amount * (1 + m.Percent/100)),
		Currency: p.Currency,
	}
}

// Service converts arbitrary priced payloads into the single platform
// currency. The target is fixed system-wide, not per call.
type Service struct {
	rates  rates.Source
	target domain.Currency
}

func NewService(rateSource rates.Source, target domain.Currency) *Service {
	return &Service{rates: rateSource, target: target}
}

func (s *Service) TargetCurrency() domain.Currency {
	return s.target
}

// Convert applies currency conversion to payload without knowing its shape:
// currencyOf extracts the payload's source currency, mutate applies a price
// function to every price field. A payload with no currency, or already in
// the target currency, passes through unchanged. An unspecified currency or
// a missing rate fails the whole conversion; prices are never partially
// converted.
func Convert[T any](ctx context.Context, s *Service, payload T, currencyOf func(T) domain.Currency, mutate func(T, func(domain.Price) domain.Price) T) (T, error) {
	currency := currencyOf(payload)

	switch currency {
	case "":
		return payload, nil
	case s.target:
		return payload, nil
	case domain.CurrencyUnspecified:
		var zero T
		return zero, ErrCurrencyUnspecified
	}

	rate, err := s.rates.Get(ctx, currency, s.target)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("convert %s to %s: %w", currency, s.target, err)
	}

	converter := NewRateConverter(currency, s.target, rate)
	return mutate(payload, converter.Convert), nil
}
