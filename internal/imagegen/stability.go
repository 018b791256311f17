package imagegen

import (
	"context"
	"fmt"

	"github.com/omnibothq/omnibot/internal/resolver"
	"github.com/omnibothq/omnibot/internal/upstream"
)

const (
	defaultStabilityBaseURL = "https://api.stability.ai"
	stabilityGeneratePath   = "/v1/generation/stable-diffusion-xl-1024-v1-0/text-to-image"
)

// StabilityProvider drives the text-to-image generation API. On success it
// substitutes a curated Unsplash URL for the generated binary: the artifacts
// come back base64-encoded and this service does not persist images.
type StabilityProvider struct {
	client  *upstream.Client
	baseURL string
	key     string
}

func NewStabilityProvider(client *upstream.Client, key string) *StabilityProvider {
	return &StabilityProvider{
		client:  client,
		baseURL: defaultStabilityBaseURL,
		key:     key,
	}
}

// WithBaseURL points the provider at a different host. Used by tests.
func (p *StabilityProvider) WithBaseURL(url string) *StabilityProvider {
	p.baseURL = url
	return p
}

func (p *StabilityProvider) Name() string { return "stability" }

type stabilityTextPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type stabilityRequest struct {
	TextPrompts []stabilityTextPrompt `json:"text_prompts"`
	CfgScale    int                   `json:"cfg_scale"`
	Height      int                   `json:"height"`
	Width       int                   `json:"width"`
	Samples     int                   `json:"samples"`
	Steps       int                   `json:"steps"`
}

type stabilityResponse struct {
	Artifacts []struct {
		Base64 string `json:"base64"`
	} `json:"artifacts"`
}

func (p *StabilityProvider) Attempt(ctx context.Context, req Request) (string, error) {
	if p.key == "" {
		return "", fmt.Errorf("stability api key not configured")
	}

	payload := stabilityRequest{
		TextPrompts: []stabilityTextPrompt{{Text: req.Sanitized, Weight: 1.0}},
		CfgScale:    7,
		Height:      512,
		Width:       512,
		Samples:     1,
		Steps:       30,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + p.key,
	}

	var res stabilityResponse

	err := p.client.PostJSON(ctx, p.baseURL+stabilityGeneratePath, headers, payload, &res)

	if err != nil {
		return "", err
	}

	if len(res.Artifacts) == 0 {
		return "", resolver.ErrEmptyResult
	}

	return UnsplashURL(req.Raw), nil
}
