package artgen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wrapgen/internal/domain"
	"wrapgen/internal/infra"
)

// Supported output dimensions. Requests outside this range are rejected before
// any network call is made.
const (
	minDimension = 256
	maxDimension = 8192
)

// Options configures the generation provider client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the remote image generation service. It only
// submits and reads; retry and poll budgets belong to the caller.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type submitPayload struct {
	Model       string            `json:"model"`
	Prompt      string            `json:"prompt"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	StyleParams map[string]string `json:"style_params,omitempty"`
	SourceImage string            `json:"source_image,omitempty"`
	SourceMIME  string            `json:"source_mime,omitempty"`
}

type requestEnvelope struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output struct {
		URL string `json:"url"`
	} `json:"output"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.artgen.example.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "wrap-diffusion-xl"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Submit sends one generation request. It returns ErrProviderRejected for
// invalid input (locally validated or 4xx) and ErrProviderUnavailable for
// network failures and 5xx responses; neither is retried at this layer.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (*RequestHandle, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("artgen: empty prompt: %w", domain.ErrProviderRejected)
	}
	if err := validateDimension(req.Width); err != nil {
		return nil, err
	}
	if err := validateDimension(req.Height); err != nil {
		return nil, err
	}

	payload := submitPayload{
		Model:       c.model,
		Prompt:      prompt,
		Width:       req.Width,
		Height:      req.Height,
		StyleParams: req.StyleParams,
	}
	if len(req.SourceImage) > 0 {
		payload.SourceImage = base64.StdEncoding.EncodeToString(req.SourceImage)
		payload.SourceMIME = req.SourceMIME
		if payload.SourceMIME == "" {
			payload.SourceMIME = "image/png"
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("artgen: encode request: %w", err)
	}

	envelope, err := c.do(ctx, http.MethodPost, c.baseURL+"/generations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if envelope.ID == "" {
		return nil, fmt.Errorf("artgen: provider returned no request id: %w", domain.ErrProviderUnavailable)
	}
	handle := &RequestHandle{ID: envelope.ID}
	status := envelope.toStatus()
	if status.State.Terminal() {
		handle.resolved = status
	}
	c.logger.Debug().
		Str("request_id", envelope.ID).
		Str("state", string(status.State)).
		Msg("artgen: submitted generation request")
	return handle, nil
}

// Poll reads the current state of a request. It is an idempotent read: a handle
// already resolved to a terminal state is answered without a network call, and a
// terminal response is cached on the handle.
func (c *Client) Poll(ctx context.Context, handle *RequestHandle) (*RequestStatus, error) {
	if handle == nil || strings.TrimSpace(handle.ID) == "" {
		return nil, fmt.Errorf("artgen: empty request handle: %w", domain.ErrInvalidInput)
	}
	if resolved := handle.Resolved(); resolved != nil {
		return resolved, nil
	}
	envelope, err := c.do(ctx, http.MethodGet, c.baseURL+"/generations/"+url.PathEscape(handle.ID), nil)
	if err != nil {
		return nil, err
	}
	status := envelope.toStatus()
	if status.ID == "" {
		status.ID = handle.ID
	}
	if status.State.Terminal() {
		cached := *status
		handle.resolved = &cached
	}
	return status, nil
}

// PollByID is Poll for callers that only kept the provider-issued id.
func (c *Client) PollByID(ctx context.Context, id string) (*RequestStatus, error) {
	return c.Poll(ctx, &RequestHandle{ID: id})
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) (*requestEnvelope, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("artgen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("artgen: http request: %v: %w", err, domain.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("artgen: read response: %v: %w", err, domain.ErrProviderUnavailable)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("artgen: status %d: %s: %w", resp.StatusCode, errorDetail(raw), domain.ErrProviderUnavailable)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("artgen: status %d: %s: %w", resp.StatusCode, errorDetail(raw), domain.ErrProviderRejected)
	}

	var envelope requestEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("artgen: decode response: %v: %w", err, domain.ErrProviderUnavailable)
	}
	return &envelope, nil
}

func (e *requestEnvelope) toStatus() *RequestStatus {
	return &RequestStatus{
		ID:           e.ID,
		State:        normalizeState(e.Status),
		ImageURL:     strings.TrimSpace(e.Output.URL),
		ErrorMessage: strings.TrimSpace(e.Error.Message),
	}
}

func normalizeState(raw string) RequestState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(StateSucceeded), "completed", "complete":
		return StateSucceeded
	case string(StateFailed), "error", "canceled":
		return StateFailed
	case string(StateProcessing), "running", "in_progress":
		return StateProcessing
	default:
		return StateStarting
	}
}

func validateDimension(px int) error {
	if px < minDimension || px > maxDimension {
		return fmt.Errorf("artgen: dimension %dpx outside supported range [%d, %d]: %w",
			px, minDimension, maxDimension, domain.ErrProviderRejected)
	}
	return nil
}

func errorDetail(raw []byte) string {
	var detail struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil {
		if detail.Error.Message != "" {
			return detail.Error.Message
		}
		if detail.Message != "" {
			return detail.Message
		}
	}
	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) > 200 {
		trimmed = trimmed[:200]
	}
	return trimmed
}
