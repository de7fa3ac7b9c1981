package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/basel-ax/signbridge/internal/config"
	"github.com/basel-ax/signbridge/internal/domain"
)

const promptTemplate = "An avatar doing hand signing asking '%s' in sign language"

// VideoTranslationService turns text into a playable sign-language video URL
type VideoTranslationService struct {
	policy   *FallbackPolicy
	defaults domain.GenerationRequest
}

// NewVideoTranslationService wires the poller and fallback policy over gateway
// using the poll and generation settings from cfg.
func NewVideoTranslationService(cfg *config.Config, gateway domain.VideoGenerationGateway, logger *zerolog.Logger) *VideoTranslationService {
	poller := NewPoller(gateway, PollerOptions{
		Interval: cfg.PollInterval,
		Timeout:  cfg.PollTimeout,
		Logger:   logger,
	})
	return newVideoTranslationService(cfg, NewFallbackPolicy(gateway, poller, cfg.FallbackVideoURL, logger))
}

func newVideoTranslationService(cfg *config.Config, policy *FallbackPolicy) *VideoTranslationService {
	return &VideoTranslationService{
		policy: policy,
		defaults: domain.GenerationRequest{
			Duration:       cfg.DefaultDuration,
			AspectRatio:    cfg.DefaultAspectRatio,
			Model:          cfg.DefaultModel,
			Quality:        cfg.DefaultQuality,
			Seed:           cfg.DefaultSeed,
			NegativePrompt: domain.DefaultNegativePrompt,
			Watermark:      cfg.DefaultWatermark,
		},
	}
}

// TranslateToVideo resolves text to a video. It always returns a usable URL;
// provider failures are replaced by the fallback clip.
func (s *VideoTranslationService) TranslateToVideo(ctx context.Context, text string, useLive bool) domain.ResolvedAsset {
	return s.policy.Resolve(ctx, s.BuildRequest(text), useLive)
}

// BuildRequest fills the prompt template and generation defaults for text
func (s *VideoTranslationService) BuildRequest(text string) domain.GenerationRequest {
	req := s.defaults
	req.Prompt = fmt.Sprintf(promptTemplate, text)
	return req
}
