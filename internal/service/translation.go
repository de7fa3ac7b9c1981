package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/basel-ax/signbridge/internal/domain"
	"github.com/basel-ax/signbridge/internal/logging"
	"github.com/basel-ax/signbridge/internal/repository"
)

// VideoTranslator resolves text to a video URL
type VideoTranslator interface {
	TranslateToVideo(ctx context.Context, text string, useLive bool) domain.ResolvedAsset
}

var _ VideoTranslator = (*VideoTranslationService)(nil)

// TranslationService records translations for authenticated callers
type TranslationService struct {
	videos  VideoTranslator
	repo    repository.TranslationRepository
	useLive bool
	logger  *zerolog.Logger
}

// NewTranslationService creates a translation service. useLive selects
// live provider generation for every Translate call.
func NewTranslationService(videos VideoTranslator, repo repository.TranslationRepository, useLive bool, logger *zerolog.Logger) *TranslationService {
	return &TranslationService{
		videos:  videos,
		repo:    repo,
		useLive: useLive,
		logger:  logging.OrDiscard(logger),
	}
}

// Translate resolves text to a video and stores the result for userID
func (s *TranslationService) Translate(ctx context.Context, userID, text string) (*domain.Translation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrAccessDenied
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}

	asset := s.videos.TranslateToVideo(ctx, text, s.useLive)
	t := &domain.Translation{
		UserID:   userID,
		Text:     text,
		VideoURL: asset.URL,
		IsLive:   asset.IsLive,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to store translation: %w", err)
	}

	s.logger.Info().
		Str("translation_id", t.ID).
		Str("user_id", userID).
		Bool("live", asset.IsLive).
		Msg("translation stored")
	return t, nil
}

// History lists userID's translations, newest first
func (s *TranslationService) History(ctx context.Context, userID string) ([]domain.Translation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrAccessDenied
	}
	translations, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	return translations, nil
}

// Get returns one translation, which must belong to userID
func (s *TranslationService) Get(ctx context.Context, userID, id string) (*domain.Translation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrAccessDenied
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, domain.ErrAccessDenied
	}
	return t, nil
}
