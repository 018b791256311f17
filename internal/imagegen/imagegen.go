// Package imagegen resolves image-generation requests through the fallback
// chain: the Stability text-to-image API first, then a placeholder-image
// service when generation is unavailable. Every prompt passes the sanitizer
// before any provider sees it.
package imagegen

import (
	"context"
	"log/slog"

	"github.com/omnibothq/omnibot/internal/resolver"
	"github.com/omnibothq/omnibot/internal/upstream"
)

// Request carries both prompt forms: providers generate from the sanitized
// text, while the stock-photo and placeholder URLs key off the user's words.
type Request struct {
	Raw       string
	Sanitized string
}

type Service struct {
	chain *resolver.Chain[Request, string]
}

func NewService(client *upstream.Client, stabilityKey string, log *slog.Logger, metrics resolver.FailureRecorder) *Service {
	providers := []resolver.Provider[Request, string]{
		NewStabilityProvider(client, stabilityKey),
	}

	return &Service{
		chain: resolver.NewChain("image", providers, fallbackURL, log, metrics),
	}
}

// NewServiceWithProviders is the test seam: inject any provider list.
func NewServiceWithProviders(providers []resolver.Provider[Request, string], log *slog.Logger, metrics resolver.FailureRecorder) *Service {
	return &Service{
		chain: resolver.NewChain("image", providers, fallbackURL, log, metrics),
	}
}

// Generate sanitizes the prompt and resolves an image URL. Never fails: the
// placeholder fallback is total.
func (s *Service) Generate(ctx context.Context, prompt string) (string, string) {
	req := Request{
		Raw:       prompt,
		Sanitized: SanitizePrompt(prompt),
	}

	return s.chain.Resolve(ctx, req)
}

func fallbackURL(req Request) string {
	return PlaceholderURL(req.Raw)
}
