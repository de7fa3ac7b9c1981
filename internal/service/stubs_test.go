package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/basel-ax/signbridge/internal/config"
	"github.com/basel-ax/signbridge/internal/domain"
)

type stubGateway struct {
	mu        sync.Mutex
	handle    domain.JobHandle
	submitErr error
	reports   []domain.StatusReport
	statusErr error
	onCheck   func(n int)
	submits   int
	checks    int
	lastReq   domain.GenerationRequest
}

func (g *stubGateway) Submit(ctx context.Context, req domain.GenerationRequest) (domain.JobHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submits++
	g.lastReq = req
	if g.submitErr != nil {
		return "", g.submitErr
	}
	if g.handle == "" {
		return "job-1", nil
	}
	return g.handle, nil
}

func (g *stubGateway) CheckStatus(ctx context.Context, handle domain.JobHandle) (domain.StatusReport, error) {
	g.mu.Lock()
	g.checks++
	n := g.checks
	hook := g.onCheck
	var report domain.StatusReport
	if len(g.reports) > 0 {
		idx := n - 1
		if idx >= len(g.reports) {
			idx = len(g.reports) - 1
		}
		report = g.reports[idx]
	}
	err := g.statusErr
	g.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if err != nil {
		return domain.StatusReport{}, err
	}
	return report, nil
}

func (g *stubGateway) counts() (submits, checks int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submits, g.checks
}

// fakeClock advances only when Sleep is called
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.sleeps++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		FallbackVideoURL:   "http://local/fallback.mp4",
		DefaultDuration:    5,
		DefaultAspectRatio: "16:9",
		DefaultModel:       "v5",
		DefaultQuality:     "360p",
		PollInterval:       5 * time.Second,
		PollTimeout:        300 * time.Second,
	}
}

func newTestVideoService(cfg *config.Config, gateway domain.VideoGenerationGateway, clock *fakeClock) *VideoTranslationService {
	poller := NewPoller(gateway, PollerOptions{
		Interval: cfg.PollInterval,
		Timeout:  cfg.PollTimeout,
		Now:      clock.Now,
		Sleep:    clock.Sleep,
	})
	return newVideoTranslationService(cfg, NewFallbackPolicy(gateway, poller, cfg.FallbackVideoURL, nil))
}

type memoryRepo struct {
	mu        sync.Mutex
	items     map[string]domain.Translation
	attempts  map[string]int
	seq       int
	createErr error
	updateErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]domain.Translation{}, attempts: map[string]int{}}
}

func (r *memoryRepo) Create(ctx context.Context, t *domain.Translation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	if t.ID == "" {
		t.ID = fmt.Sprintf("tr-%d", r.seq)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Date(2024, 1, 1, 0, r.seq, 0, 0, time.UTC)
	}
	r.items[t.ID] = *t
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*domain.Translation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return nil, domain.ErrTranslationNotFound
	}
	return &t, nil
}

func (r *memoryRepo) ListByUser(ctx context.Context, userID string) ([]domain.Translation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Translation
	for _, t := range r.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) ListFallbacks(ctx context.Context, limit int) ([]domain.Translation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Translation
	for _, t := range r.items {
		if !t.IsLive {
			out = append(out, t)
		}
	}
	// never attempted (0) first, then by attempt order, then oldest first
	sort.Slice(out, func(i, j int) bool {
		ai, aj := r.attempts[out[i].ID], r.attempts[out[j].ID]
		if ai != aj {
			return ai < aj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepo) UpdateVideo(ctx context.Context, id, videoURL string, isLive bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	t, ok := r.items[id]
	if !ok {
		return errors.New("missing")
	}
	t.VideoURL = videoURL
	t.IsLive = isLive
	r.items[id] = t
	return nil
}

func (r *memoryRepo) MarkAttempted(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrTranslationNotFound
	}
	r.seq++
	r.attempts[id] = r.seq
	return nil
}
