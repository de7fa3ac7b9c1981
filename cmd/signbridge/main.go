package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/basel-ax/signbridge/internal/config"
	"github.com/basel-ax/signbridge/internal/infrastructure/pixverse"
	"github.com/basel-ax/signbridge/internal/logging"
	"github.com/basel-ax/signbridge/internal/repository"
	"github.com/basel-ax/signbridge/internal/service"
)

var errUsage = errors.New("please specify one of: -text, -history, -id or -backfill")

type options struct {
	verbose       bool
	text          string
	userID        string
	live          bool
	history       bool
	translationID string
	backfill      bool
}

func parseOptions(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("signbridge", flag.ContinueOnError)
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	fs.StringVar(&opts.text, "text", "", "Text to translate into a sign language video")
	fs.StringVar(&opts.userID, "user", "", "Caller identity the translation is recorded for")
	fs.BoolVar(&opts.live, "live", false, "Use the live provider (overrides USE_PIXVERSE)")
	fs.BoolVar(&opts.history, "history", false, "List stored translations for -user")
	fs.StringVar(&opts.translationID, "id", "", "Show one stored translation owned by -user")
	fs.BoolVar(&opts.backfill, "backfill", false, "Retry live generation for fallback translations on BACKFILL_SCHEDULE")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	if opts.text == "" && !opts.history && opts.translationID == "" && !opts.backfill {
		return nil, errUsage
	}
	return opts, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "signbridge: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup always happens
func run(args []string) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.AppEnv)
	if opts.verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	repo := repository.NewPostgresTranslationRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to prepare database schema: %w", err)
	}

	gateway := pixverse.NewClient(pixverse.Options{
		APIKey:  cfg.PixverseAPIKey,
		BaseURL: cfg.PixverseBaseURL,
		Timeout: cfg.HTTPTimeout,
		Logger:  &logger,
	})
	videos := service.NewVideoTranslationService(cfg, gateway, &logger)
	useLive := cfg.UsePixverse || opts.live
	translations := service.NewTranslationService(videos, repo, useLive, &logger)

	switch {
	case opts.backfill:
		return runBackfill(ctx, service.NewBackfillService(videos, repo, cfg.BackfillBatch, &logger), cfg.BackfillSchedule, logger)
	case opts.history:
		list, err := translations.History(ctx, opts.userID)
		if err != nil {
			return fmt.Errorf("failed to list translations: %w", err)
		}
		return printJSON(list)
	case opts.translationID != "":
		translation, err := translations.Get(ctx, opts.userID, opts.translationID)
		if err != nil {
			return fmt.Errorf("failed to get translation: %w", err)
		}
		return printJSON(translation)
	default:
		translation, err := translations.Translate(ctx, opts.userID, opts.text)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}
		return printJSON(translation)
	}
}

func runBackfill(ctx context.Context, backfill *service.BackfillService, schedule string, logger zerolog.Logger) error {
	c := cron.New(cron.WithSeconds())

	var mu sync.Mutex
	_, err := c.AddFunc(schedule, func() {
		if !mu.TryLock() {
			logger.Warn().Msg("[CRON] previous backfill still running, skipping")
			return
		}
		defer mu.Unlock()
		if _, err := backfill.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("[CRON] backfill failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid backfill schedule %q: %w", schedule, err)
	}

	c.Start()
	logger.Info().Str("schedule", schedule).Msg("backfill scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info().Msg("backfill scheduler stopped")
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
