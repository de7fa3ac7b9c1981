package domain

import (
	"context"
)

const (
	// DefaultFallbackVideoURL is the locally hosted clip served when live generation is off or fails
	DefaultFallbackVideoURL = "http://localhost:8000/assets/wasnt%20hungry%20anymore.mp4"
	// DefaultNegativePrompt steers the provider away from rendering written text
	DefaultNegativePrompt = "text, words, letters, writing, bad quality, blurry, distorted"
)

// GenerationRequest represents the parameters for a text-to-video job
type GenerationRequest struct {
	Prompt         string
	Duration       int
	AspectRatio    string
	Model          string
	Quality        string
	Seed           int // 0 lets the provider pick a random seed
	NegativePrompt string
	Watermark      bool
}

// JobHandle identifies one in-flight generation job at the provider
type JobHandle string

// JobStatus is the outcome of a single status check
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusUnknown    JobStatus = "unknown"
)

// Terminal reports whether the status ends a wait
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StatusReport is what the gateway returns for one status check.
// URL is only set when Status is StatusCompleted.
type StatusReport struct {
	Status JobStatus
	URL    string
}

// ResolvedAsset is the final video for a translation request
type ResolvedAsset struct {
	URL    string
	IsLive bool
}

// VideoGenerationGateway defines the provider operations the job client needs
type VideoGenerationGateway interface {
	// Submit starts a generation job and returns its handle
	Submit(ctx context.Context, req GenerationRequest) (JobHandle, error)

	// CheckStatus performs a single status lookup for a job
	CheckStatus(ctx context.Context, handle JobHandle) (StatusReport, error)
}
