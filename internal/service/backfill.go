package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/basel-ax/signbridge/internal/logging"
	"github.com/basel-ax/signbridge/internal/repository"
)

const defaultBackfillBatch = 10

// BackfillService retries live generation for stored translations that were
// served the fallback clip and upgrades them when the provider delivers.
type BackfillService struct {
	videos VideoTranslator
	repo   repository.TranslationRepository
	batch  int
	logger *zerolog.Logger
}

// NewBackfillService creates a backfill service processing up to batch records per run
func NewBackfillService(videos VideoTranslator, repo repository.TranslationRepository, batch int, logger *zerolog.Logger) *BackfillService {
	if batch <= 0 {
		batch = defaultBackfillBatch
	}
	return &BackfillService{
		videos: videos,
		repo:   repo,
		batch:  batch,
		logger: logging.OrDiscard(logger),
	}
}

// Run processes one batch and returns how many translations were upgraded
func (s *BackfillService) Run(ctx context.Context) (int, error) {
	pending, err := s.repo.ListFallbacks(ctx, s.batch)
	if err != nil {
		return 0, fmt.Errorf("failed to list fallback translations: %w", err)
	}

	upgraded := 0
	for _, t := range pending {
		if err := ctx.Err(); err != nil {
			return upgraded, err
		}

		asset := s.videos.TranslateToVideo(ctx, t.Text, true)
		if !asset.IsLive {
			s.logger.Debug().Str("translation_id", t.ID).Msg("backfill: provider still unavailable")
			s.markAttempted(ctx, t.ID)
			continue
		}

		if err := s.repo.UpdateVideo(ctx, t.ID, asset.URL, true); err != nil {
			s.logger.Error().Err(err).Str("translation_id", t.ID).Msg("backfill: failed to update translation")
			s.markAttempted(ctx, t.ID)
			continue
		}
		upgraded++
	}

	s.logger.Info().Int("checked", len(pending)).Int("upgraded", upgraded).Msg("backfill run finished")
	return upgraded, nil
}

// markAttempted moves a record behind the ones not yet retried
func (s *BackfillService) markAttempted(ctx context.Context, id string) {
	if err := s.repo.MarkAttempted(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("translation_id", id).Msg("backfill: failed to record attempt")
	}
}
