package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrMissingAPIKey is matched by a ConfigurationError for the provider key.
	ErrMissingAPIKey = errors.New("provider api key is not configured")
	// ErrTimeoutExceeded is matched by every TimeoutExceededError.
	ErrTimeoutExceeded = errors.New("polling deadline exceeded")
	// ErrTranslationNotFound is returned when a stored translation does not exist.
	ErrTranslationNotFound = errors.New("translation not found")
	// ErrAccessDenied is returned when a caller reads another user's translation.
	ErrAccessDenied = errors.New("access denied")
	// ErrEmptyText is returned when there is nothing to translate.
	ErrEmptyText = errors.New("text is required")
)

// ConfigurationError reports a setting required for live generation that is missing
type ConfigurationError struct {
	Setting string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Setting, e.Err)
	}
	return fmt.Sprintf("configuration: %s is not set", e.Setting)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ProviderError reports an HTTP-level or provider-reported failure.
// StatusCode and Body keep the raw response for diagnostics; Code and
// Message hold the provider's own error fields when it returned any.
type ProviderError struct {
	Op         string
	StatusCode int
	Body       string
	Code       int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString("provider")
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	b.WriteString(":")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " status %d", e.StatusCode)
	}
	if e.Code != 0 {
		fmt.Fprintf(&b, " code %d", e.Code)
	}
	if e.Message != "" {
		b.WriteString(" ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(" ")
		b.WriteString(e.Err.Error())
	}
	if e.Body != "" && e.Message == "" {
		b.WriteString(", body: ")
		b.WriteString(e.Body)
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// TimeoutExceededError reports that a job did not finish before the poll deadline
type TimeoutExceededError struct {
	Handle  JobHandle
	Elapsed time.Duration
	Timeout time.Duration
}

func (e *TimeoutExceededError) Error() string {
	return fmt.Sprintf("job %s: no result after %s (timeout %s)", e.Handle, e.Elapsed, e.Timeout)
}

func (e *TimeoutExceededError) Is(target error) bool {
	return target == ErrTimeoutExceeded
}
