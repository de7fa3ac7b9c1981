package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/basel-ax/signbridge/internal/domain"
)

// TranslationRepository defines the interface for translation record access
type TranslationRepository interface {
	Create(ctx context.Context, t *domain.Translation) error
	GetByID(ctx context.Context, id string) (*domain.Translation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Translation, error)
	ListFallbacks(ctx context.Context, limit int) ([]domain.Translation, error)
	UpdateVideo(ctx context.Context, id, videoURL string, isLive bool) error
	MarkAttempted(ctx context.Context, id string) error
}

// Schema creates the translations table when it does not exist and adds
// columns introduced after the first release.
const Schema = `
	CREATE TABLE IF NOT EXISTS text_translations (
		id              UUID PRIMARY KEY,
		user_id         TEXT NOT NULL,
		text            TEXT NOT NULL,
		video_url       TEXT NOT NULL,
		is_live         BOOLEAN NOT NULL DEFAULT FALSE,
		last_attempt_at TIMESTAMPTZ,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	);
	ALTER TABLE text_translations ADD COLUMN IF NOT EXISTS last_attempt_at TIMESTAMPTZ;
	CREATE INDEX IF NOT EXISTS text_translations_user_created_idx
		ON text_translations (user_id, created_at DESC);
`

// PostgresTranslationRepository implements TranslationRepository for PostgreSQL
type PostgresTranslationRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresTranslationRepository creates a new PostgreSQL translation repository
func NewPostgresTranslationRepository(db *sql.DB) *PostgresTranslationRepository {
	return &PostgresTranslationRepository{db: db, now: time.Now}
}

// Migrate applies Schema
func (r *PostgresTranslationRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

// Create inserts a translation, assigning ID and CreatedAt when unset
func (r *PostgresTranslationRepository) Create(ctx context.Context, t *domain.Translation) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now().UTC()
	}

	query := `
		INSERT INTO text_translations (id, user_id, text, video_url, is_live, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`

	_, err := r.db.ExecContext(ctx, query, t.ID, t.UserID, t.Text, t.VideoURL, t.IsLive, t.CreatedAt)
	return err
}

// GetByID retrieves a translation, returning domain.ErrTranslationNotFound when absent
func (r *PostgresTranslationRepository) GetByID(ctx context.Context, id string) (*domain.Translation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTranslationNotFound
	}

	query := `
		SELECT id, user_id, text, video_url, is_live, created_at
		FROM text_translations
		WHERE id = $1
	`

	var t domain.Translation
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.UserID,
		&t.Text,
		&t.VideoURL,
		&t.IsLive,
		&t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTranslationNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// ListByUser retrieves a user's translations, newest first
func (r *PostgresTranslationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Translation, error) {
	query := `
		SELECT id, user_id, text, video_url, is_live, created_at
		FROM text_translations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, userID)
}

// ListFallbacks retrieves translations still served by the fallback clip.
// Records never retried come first, then the least recently retried, so a
// run of permanently failing records cannot hold the head of the queue.
func (r *PostgresTranslationRepository) ListFallbacks(ctx context.Context, limit int) ([]domain.Translation, error) {
	query := `
		SELECT id, user_id, text, video_url, is_live, created_at
		FROM text_translations
		WHERE is_live = FALSE
		ORDER BY last_attempt_at ASC NULLS FIRST, created_at ASC
		LIMIT $1
	`

	return r.list(ctx, query, limit)
}

// UpdateVideo replaces the video of a translation
func (r *PostgresTranslationRepository) UpdateVideo(ctx context.Context, id, videoURL string, isLive bool) error {
	query := `
		UPDATE text_translations
		SET video_url = $1, is_live = $2, updated_at = $3
		WHERE id = $4
	`

	res, err := r.db.ExecContext(ctx, query, videoURL, isLive, r.now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTranslationNotFound
	}
	return nil
}

// MarkAttempted records a failed live generation attempt for a translation
func (r *PostgresTranslationRepository) MarkAttempted(ctx context.Context, id string) error {
	query := `
		UPDATE text_translations
		SET last_attempt_at = $1, updated_at = $1
		WHERE id = $2
	`

	res, err := r.db.ExecContext(ctx, query, r.now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTranslationNotFound
	}
	return nil
}

func (r *PostgresTranslationRepository) list(ctx context.Context, query string, args ...any) ([]domain.Translation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Translation
	for rows.Next() {
		var t domain.Translation
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.VideoURL, &t.IsLive, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
