// Package resolver implements the ordered provider-fallback chain shared by
// the crypto pricing and image generation features: try each provider in
// preference order, return the first success, and fall back to a deterministic
// synthetic result when every provider fails. Provider failures are logged and
// counted, never surfaced to the caller.
package resolver

import (
	"context"
	"errors"
	"log/slog"
)

// SourceSynthetic tags results fabricated by the fallback so callers are never
// handed mock data that looks live.
const SourceSynthetic = "synthetic"

// ErrEmptyResult marks an upstream response that was HTTP-successful but
// semantically empty (no bars, no artifacts). The chain treats it like any
// other failure and moves on.
var ErrEmptyResult = errors.New("upstream returned empty result")

// Provider is a single external service adapter: one attempt, no retries.
type Provider[Req, Res any] interface {
	Name() string
	Attempt(ctx context.Context, req Req) (Res, error)
}

// FailureRecorder receives provider outcomes for metrics. Satisfied by
// observability.Prom.
type FailureRecorder interface {
	RecordProviderFailure(feature, provider string)
	RecordProviderSuccess(feature, provider string)
	RecordSynthetic(feature string)
}

type Chain[Req, Res any] struct {
	feature   string
	providers []Provider[Req, Res]
	fallback  func(Req) Res
	log       *slog.Logger
	metrics   FailureRecorder
}

// NewChain builds a chain for one feature. fallback must be total: it is the
// guarantee that Resolve never fails.
func NewChain[Req, Res any](feature string, providers []Provider[Req, Res], fallback func(Req) Res, log *slog.Logger, metrics FailureRecorder) *Chain[Req, Res] {
	return &Chain[Req, Res]{
		feature:   feature,
		providers: providers,
		fallback:  fallback,
		log:       log,
		metrics:   metrics,
	}
}

// Resolve folds the ordered provider list into one outcome. The returned
// source names the provider that answered, or SourceSynthetic.
func (c *Chain[Req, Res]) Resolve(ctx context.Context, req Req) (Res, string) {
	for _, p := range c.providers {
		res, err := p.Attempt(ctx, req)

		if err != nil {
			c.log.Warn("provider attempt failed",
				"feature", c.feature,
				"provider", p.Name(),
				"err", err,
			)

			if c.metrics != nil {
				c.metrics.RecordProviderFailure(c.feature, p.Name())
			}

			continue
		}

		if c.metrics != nil {
			c.metrics.RecordProviderSuccess(c.feature, p.Name())
		}

		return res, p.Name()
	}

	c.log.Warn("all providers failed, serving synthetic fallback", "feature", c.feature)

	if c.metrics != nil {
		c.metrics.RecordSynthetic(c.feature)
	}

	return c.fallback(req), SourceSynthetic
}
