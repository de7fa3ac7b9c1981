package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/basel-ax/signbridge/internal/domain"
	"github.com/basel-ax/signbridge/internal/logging"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultPollTimeout  = 300 * time.Second
)

// PollState is the state of one wait on a generation job
type PollState string

const (
	StateWaiting   PollState = "waiting"
	StateCompleted PollState = "completed"
	StateTimedOut  PollState = "timed_out"
	StateFailed    PollState = "failed"
	StateCancelled PollState = "cancelled"
)

// SleepFunc suspends for d or until ctx is done, whichever comes first
type SleepFunc func(ctx context.Context, d time.Duration) error

// PollerOptions configures a Poller. Zero values fall back to a 5s interval,
// a 300s timeout, the wall clock and a timer based sleep.
type PollerOptions struct {
	Interval time.Duration
	Timeout  time.Duration
	Now      func() time.Time
	Sleep    SleepFunc
	Logger   *zerolog.Logger
}

// PollResult describes how a wait ended
type PollResult struct {
	State   PollState
	URL     string
	Checks  int
	Elapsed time.Duration
}

// Poller drives repeated status checks for a single job until it completes,
// fails, times out or the context is cancelled. A Poller holds no per-job
// state, so one instance can serve concurrent waits.
type Poller struct {
	gateway  domain.VideoGenerationGateway
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	sleep    SleepFunc
	logger   *zerolog.Logger
}

// NewPoller creates a poller over the given gateway
func NewPoller(gateway domain.VideoGenerationGateway, opts PollerOptions) *Poller {
	p := &Poller{
		gateway:  gateway,
		interval: opts.Interval,
		timeout:  opts.Timeout,
		now:      opts.Now,
		sleep:    opts.Sleep,
		logger:   logging.OrDiscard(opts.Logger),
	}
	if p.interval <= 0 {
		p.interval = defaultPollInterval
	}
	if p.timeout <= 0 {
		p.timeout = defaultPollTimeout
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.sleep == nil {
		p.sleep = sleepContext
	}
	return p
}

// Wait checks the job every interval until a terminal state is reached.
// A provider error ends the wait immediately; the failed check is not retried.
// The URL of a completed job may be empty and callers must treat that as a failure.
func (p *Poller) Wait(ctx context.Context, handle domain.JobHandle) (PollResult, error) {
	start := p.now()
	result := PollResult{State: StateWaiting}
	log := p.logger.With().Str("job_id", string(handle)).Logger()

	finish := func(state PollState) PollResult {
		result.State = state
		result.Elapsed = p.now().Sub(start)
		log.Debug().
			Str("state", string(state)).
			Int("checks", result.Checks).
			Dur("elapsed", result.Elapsed).
			Msg("poll finished")
		return result
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(StateCancelled), err
		}

		elapsed := p.now().Sub(start)
		if elapsed > p.timeout {
			return finish(StateTimedOut), &domain.TimeoutExceededError{
				Handle:  handle,
				Elapsed: elapsed,
				Timeout: p.timeout,
			}
		}

		report, err := p.gateway.CheckStatus(ctx, handle)
		result.Checks++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return finish(StateCancelled), ctxErr
			}
			return finish(StateFailed), err
		}

		switch report.Status {
		case domain.StatusCompleted:
			result.URL = report.URL
			return finish(StateCompleted), nil
		case domain.StatusFailed:
			// only gateways that report failure explicitly; pixverse never does
			return finish(StateFailed), &domain.ProviderError{Op: "status", Message: "job reported as failed"}
		default:
			log.Debug().Str("status", string(report.Status)).Int("checks", result.Checks).Msg("job still running")
		}

		if err := p.sleep(ctx, p.interval); err != nil {
			return finish(StateCancelled), err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
