package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/basel-ax/signbridge/internal/domain"
)

// openTestDB connects to the database named by SIGNBRIDGE_TEST_DSN and skips otherwise
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("SIGNBRIDGE_TEST_DSN")
	if dsn == "" {
		t.Skip("SIGNBRIDGE_TEST_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPostgresTranslationRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewPostgresTranslationRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	userID := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM text_translations WHERE user_id = $1`, userID)
	})

	older := &domain.Translation{UserID: userID, Text: "one", VideoURL: "http://local/fallback.mp4", CreatedAt: time.Now().Add(-time.Minute).UTC()}
	newer := &domain.Translation{UserID: userID, Text: "two", VideoURL: "https://cdn/x.mp4", IsLive: true}
	for _, tr := range []*domain.Translation{older, newer} {
		if err := repo.Create(ctx, tr); err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := uuid.Parse(tr.ID); err != nil {
			t.Fatalf("id %q is not a uuid", tr.ID)
		}
	}

	list, err := repo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("unexpected order: %+v", list)
	}

	if err := repo.UpdateVideo(ctx, older.ID, "https://cdn/upgraded.mp4", true); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetByID(ctx, older.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.VideoURL != "https://cdn/upgraded.mp4" || !got.IsLive {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := repo.MarkAttempted(ctx, uuid.NewString()); !errors.Is(err, domain.ErrTranslationNotFound) {
		t.Fatalf("expected ErrTranslationNotFound, got %v", err)
	}

	if _, err := repo.GetByID(ctx, uuid.NewString()); !errors.Is(err, domain.ErrTranslationNotFound) {
		t.Fatalf("expected ErrTranslationNotFound, got %v", err)
	}
	if err := repo.UpdateVideo(ctx, uuid.NewString(), "x", true); !errors.Is(err, domain.ErrTranslationNotFound) {
		t.Fatalf("expected ErrTranslationNotFound, got %v", err)
	}
}

func TestGetByIDRejectsMalformedID(t *testing.T) {
	repo := NewPostgresTranslationRepository(nil)
	if _, err := repo.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrTranslationNotFound) {
		t.Fatalf("expected ErrTranslationNotFound, got %v", err)
	}
}

func TestListFallbacksPutsRetriedRecordsLast(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewPostgresTranslationRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	userID := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM text_translations WHERE user_id = $1`, userID)
	})

	base := time.Now().Add(-time.Hour).UTC()
	oldest := &domain.Translation{UserID: userID, Text: "oldest", VideoURL: "http://local/fallback.mp4", CreatedAt: base}
	middle := &domain.Translation{UserID: userID, Text: "middle", VideoURL: "http://local/fallback.mp4", CreatedAt: base.Add(time.Minute)}
	newest := &domain.Translation{UserID: userID, Text: "newest", VideoURL: "http://local/fallback.mp4", CreatedAt: base.Add(2 * time.Minute)}
	for _, tr := range []*domain.Translation{oldest, middle, newest} {
		if err := repo.Create(ctx, tr); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	repo.now = func() time.Time { return base.Add(10 * time.Minute) }
	if err := repo.MarkAttempted(ctx, middle.ID); err != nil {
		t.Fatalf("mark middle: %v", err)
	}
	repo.now = func() time.Time { return base.Add(5 * time.Minute) }
	if err := repo.MarkAttempted(ctx, oldest.ID); err != nil {
		t.Fatalf("mark oldest: %v", err)
	}

	all, err := repo.ListFallbacks(ctx, 100000)
	if err != nil {
		t.Fatalf("list fallbacks: %v", err)
	}
	var got []string
	for _, tr := range all {
		if tr.UserID == userID {
			got = append(got, tr.Text)
		}
	}
	want := []string{"newest", "oldest", "middle"}
	if len(got) != len(want) {
		t.Fatalf("fallbacks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fallbacks = %v, want %v", got, want)
		}
	}
}
