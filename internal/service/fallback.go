package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/basel-ax/signbridge/internal/domain"
	"github.com/basel-ax/signbridge/internal/logging"
)

// FallbackPolicy chooses between a live generated video and the static
// fallback clip. Resolve never returns an error and never an empty URL.
type FallbackPolicy struct {
	gateway     domain.VideoGenerationGateway
	poller      *Poller
	fallbackURL string
	logger      *zerolog.Logger
}

// NewFallbackPolicy creates a policy. An empty fallbackURL is replaced by
// domain.DefaultFallbackVideoURL.
func NewFallbackPolicy(gateway domain.VideoGenerationGateway, poller *Poller, fallbackURL string, logger *zerolog.Logger) *FallbackPolicy {
	fallbackURL = strings.TrimSpace(fallbackURL)
	if fallbackURL == "" {
		fallbackURL = domain.DefaultFallbackVideoURL
	}
	return &FallbackPolicy{
		gateway:     gateway,
		poller:      poller,
		fallbackURL: fallbackURL,
		logger:      logging.OrDiscard(logger),
	}
}

// Resolve returns the fallback clip unless useLive is set and the provider
// produces a video before the poll deadline.
func (p *FallbackPolicy) Resolve(ctx context.Context, req domain.GenerationRequest, useLive bool) domain.ResolvedAsset {
	if !useLive {
		return p.fallback()
	}

	handle, err := p.gateway.Submit(ctx, req)
	if err != nil {
		p.logger.Warn().Err(err).Str("fallback_reason", "submit").Msg("live generation unavailable, serving fallback")
		return p.fallback()
	}

	result, err := p.poller.Wait(ctx, handle)
	if err != nil {
		p.logger.Warn().
			Err(err).
			Str("job_id", string(handle)).
			Str("fallback_reason", string(result.State)).
			Int("checks", result.Checks).
			Msg("live generation did not complete, serving fallback")
		return p.fallback()
	}

	url := strings.TrimSpace(result.URL)
	if url == "" {
		p.logger.Warn().
			Str("job_id", string(handle)).
			Str("fallback_reason", "empty_url").
			Msg("provider completed without a video url, serving fallback")
		return p.fallback()
	}

	p.logger.Info().
		Str("job_id", string(handle)).
		Int("checks", result.Checks).
		Dur("elapsed", result.Elapsed).
		Msg("live video generated")
	return domain.ResolvedAsset{URL: url, IsLive: true}
}

func (p *FallbackPolicy) fallback() domain.ResolvedAsset {
	return domain.ResolvedAsset{URL: p.fallbackURL, IsLive: false}
}
