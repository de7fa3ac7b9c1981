package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestConfigurationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("submit: %w", &ConfigurationError{Setting: "PIXVERSE_API_KEY", Err: ErrMissingAPIKey})

	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected errors.Is to match ErrMissingAPIKey: %v", err)
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected errors.As to find ConfigurationError")
	}
	if cfgErr.Setting != "PIXVERSE_API_KEY" {
		t.Fatalf("setting = %q, want PIXVERSE_API_KEY", cfgErr.Setting)
	}
}

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{Op: "submit", StatusCode: 500, Body: `{"oops":true}`}
	msg := err.Error()
	if !strings.Contains(msg, "status 500") || !strings.Contains(msg, `{"oops":true}`) {
		t.Fatalf("unexpected message: %s", msg)
	}

	coded := &ProviderError{Op: "status", StatusCode: 200, Code: 400017, Message: "invalid param"}
	if got := coded.Error(); !strings.Contains(got, "code 400017") || !strings.Contains(got, "invalid param") {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestTimeoutExceededErrorIs(t *testing.T) {
	err := fmt.Errorf("wait: %w", &TimeoutExceededError{Handle: "42", Elapsed: 301 * time.Second, Timeout: 300 * time.Second})
	if !errors.Is(err, ErrTimeoutExceeded) {
		t.Fatalf("expected ErrTimeoutExceeded match")
	}
	if errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("unexpected ErrMissingAPIKey match")
	}
}

func TestJobStatusTerminal(t *testing.T) {
	cases := map[JobStatus]bool{
		StatusQueued:     false,
		StatusProcessing: false,
		StatusUnknown:    false,
		StatusCompleted:  true,
		StatusFailed:     true,
	}
	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Fatalf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}
