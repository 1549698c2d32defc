package httpdetector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/authlens/authlens/internal/config"
	"github.com/authlens/authlens/pkg/models"
)

// Sentinel errors for detector backend failures.
var (
	ErrBackendUnreachable = errors.New("detector backend unreachable")
	ErrBackendTimeout     = errors.New("detector backend timeout")
	ErrInvalidScore       = errors.New("detector backend returned invalid score")
)

// Client implements models.DetectorProvider against a remote scoring service
// exposing POST /v1/score.
type Client struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a detector client for one backend.
func New(name string, cfg config.EndpointConfig, timeout time.Duration) *Client {
	return &Client{
		name:    name,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return c.name }

type scoreRequest struct {
	ContentHash string `json:"content_hash"`
	ImageURL    string `json:"image_url,omitempty"`
}

type scoreResponse struct {
	Score    float64 `json:"score"`
	Degraded bool    `json:"degraded"`
	Model    string  `json:"model,omitempty"`
}

func (c *Client) Detect(ctx context.Context, req models.DetectionRequest) (models.DetectorObservation, error) {
	body, err := json.Marshal(scoreRequest{ContentHash: req.ContentHash, ImageURL: req.ImageURL})
	if err != nil {
		return models.DetectorObservation{}, fmt.Errorf("encoding request: %w", err)
	}

	u := fmt.Sprintf("%s/v1/score", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.DetectorObservation{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return models.DetectorObservation{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.DetectorObservation{}, fmt.Errorf("%w: status %d", ErrBackendUnreachable, resp.StatusCode)
	}

	var scored scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&scored); err != nil {
		return models.DetectorObservation{}, fmt.Errorf("decoding score response: %w", err)
	}
	if math.IsNaN(scored.Score) || scored.Score < 0 || scored.Score > 1 {
		return models.DetectorObservation{}, fmt.Errorf("%w: %f", ErrInvalidScore, scored.Score)
	}

	status := models.DetectorStatusSuccess
	if scored.Degraded {
		status = models.DetectorStatusFallback
	}
	return models.DetectorObservation{
		Name:   c.name,
		Score:  scored.Score,
		Status: status,
	}, nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
}

// Compile-time check that Client implements DetectorProvider.
var _ models.DetectorProvider = (*Client)(nil)
