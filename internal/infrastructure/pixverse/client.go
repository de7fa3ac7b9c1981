package pixverse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/basel-ax/signbridge/internal/domain"
	"github.com/basel-ax/signbridge/internal/logging"
)

const (
	defaultBaseURL = "https://app-api.pixverse.ai/openapi/v2"
	apiKeyHeader   = "API-KEY"
	apiKeySetting  = "PIXVERSE_API_KEY"
)

// Provider status codes returned in Resp.status. Only these two are
// recognised; anything else keeps the job waiting until the poll deadline.
const (
	codeCompleted  = 1
	codeGenerating = 5
)

var statusByCode = map[int]domain.JobStatus{
	codeCompleted:  domain.StatusCompleted,
	codeGenerating: domain.StatusProcessing,
}

// Options configures the PixVerse client
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *zerolog.Logger
}

// Client represents the PixVerse API client. It issues exactly one HTTP call
// per operation and never retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zerolog.Logger
}

var _ domain.VideoGenerationGateway = (*Client)(nil)

type generateRequest struct {
	AspectRatio    string `json:"aspect_ratio"`
	Duration       int    `json:"duration"`
	Model          string `json:"model"`
	NegativePrompt string `json:"negative_prompt"`
	Prompt         string `json:"prompt"`
	Quality        string `json:"quality"`
	Seed           int    `json:"seed"`
	WaterMark      bool   `json:"water_mark"`
}

type envelope struct {
	ErrCode int             `json:"ErrCode"`
	ErrMsg  string          `json:"ErrMsg"`
	Resp    json.RawMessage `json:"Resp"`
}

type generateResp struct {
	VideoID json.RawMessage `json:"video_id"`
}

type resultResp struct {
	Status int    `json:"status"`
	URL    string `json:"url"`
}

// NewClient creates a new PixVerse API client
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		logger:     logging.OrDiscard(opts.Logger),
	}
}

// HasCredentials reports whether the client can perform remote calls
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Submit starts a text-to-video job and returns the provider's video id
func (c *Client) Submit(ctx context.Context, req domain.GenerationRequest) (domain.JobHandle, error) {
	if !c.HasCredentials() {
		return "", &domain.ConfigurationError{Setting: apiKeySetting, Err: domain.ErrMissingAPIKey}
	}

	body, err := json.Marshal(generateRequest{
		AspectRatio:    req.AspectRatio,
		Duration:       req.Duration,
		Model:          req.Model,
		NegativePrompt: req.NegativePrompt,
		Prompt:         req.Prompt,
		Quality:        req.Quality,
		Seed:           req.Seed,
		WaterMark:      req.Watermark,
	})
	if err != nil {
		return "", fmt.Errorf("pixverse: encode request: %w", err)
	}

	var out generateResp
	if err := c.do(ctx, "submit", http.MethodPost, c.baseURL+"/video/text/generate", body, &out); err != nil {
		return "", err
	}
	videoID := rawID(out.VideoID)
	if videoID == "" || videoID == "0" {
		return "", &domain.ProviderError{Op: "submit", StatusCode: http.StatusOK, Message: "response missing video_id"}
	}

	c.logger.Debug().Str("job_id", videoID).Str("model", req.Model).Msg("pixverse: job submitted")
	return domain.JobHandle(videoID), nil
}

// CheckStatus performs a single lookup of a job's state
func (c *Client) CheckStatus(ctx context.Context, handle domain.JobHandle) (domain.StatusReport, error) {
	if !c.HasCredentials() {
		return domain.StatusReport{}, &domain.ConfigurationError{Setting: apiKeySetting, Err: domain.ErrMissingAPIKey}
	}

	endpoint := fmt.Sprintf("%s/video/result/%s", c.baseURL, url.PathEscape(string(handle)))
	var out resultResp
	if err := c.do(ctx, "status", http.MethodGet, endpoint, nil, &out); err != nil {
		return domain.StatusReport{}, err
	}

	report := domain.StatusReport{Status: StatusFromCode(out.Status)}
	if report.Status == domain.StatusCompleted {
		report.URL = strings.TrimSpace(out.URL)
	}
	c.logger.Debug().
		Str("job_id", string(handle)).
		Int("provider_status", out.Status).
		Str("status", string(report.Status)).
		Msg("pixverse: status checked")
	return report, nil
}

// StatusFromCode maps a provider status code onto the domain enumeration.
// Codes the provider has not documented map to StatusUnknown.
func StatusFromCode(code int) domain.JobStatus {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return domain.StatusUnknown
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("pixverse: build %s request: %w", op, err)
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &domain.ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ProviderError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	body := strings.TrimSpace(string(raw))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.ProviderError{Op: op, StatusCode: resp.StatusCode, Body: body}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &domain.ProviderError{Op: op, StatusCode: resp.StatusCode, Body: body, Err: fmt.Errorf("decode response: %w", err)}
	}
	if env.ErrCode != 0 {
		return &domain.ProviderError{Op: op, StatusCode: resp.StatusCode, Body: body, Code: env.ErrCode, Message: env.ErrMsg}
	}
	if len(env.Resp) == 0 || string(env.Resp) == "null" {
		return &domain.ProviderError{Op: op, StatusCode: resp.StatusCode, Body: body, Message: "response missing Resp"}
	}
	if err := json.Unmarshal(env.Resp, out); err != nil {
		return &domain.ProviderError{Op: op, StatusCode: resp.StatusCode, Body: body, Err: fmt.Errorf("decode Resp: %w", err)}
	}
	return nil
}

// rawID accepts the video id as either a JSON number or a string
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
