package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/safesitelabs/warden/internal/hazard"
)

// Detector is the interface for any visual detector backend.
type Detector interface {
	Detect(ctx context.Context, imagePath string) (*Result, error)
}

// Client calls a detector inference sidecar over HTTP.
type Client struct {
	endpoint      string
	hazardClasses hazard.Set
	httpClient    *http.Client
}

// NewClient creates a detector client for the given sidecar endpoint. The
// hazard class set drives verdict derivation on the returned items.
func NewClient(endpoint string, hazardClasses hazard.Set) *Client {
	return &Client{
		endpoint:      endpoint,
		hazardClasses: hazardClasses,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type detectRequest struct {
	ImagePath string `json:"image_path"`
}

type detectResponse struct {
	Items []Item `json:"detected_objects"`
}

// Detect runs inference for one image and derives the binary verdict.
// Any transport or decode failure is returned to the caller; the detector
// contract makes such failures fatal to the image being processed.
func (c *Client) Detect(ctx context.Context, imagePath string) (*Result, error) {
	body, err := json.Marshal(detectRequest{ImagePath: imagePath})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/v1/detect", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector error %d: %s", resp.StatusCode, string(respBody))
	}

	var out detectResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	items := out.Items
	if items == nil {
		items = []Item{}
	}

	return &Result{
		Verdict:   DeriveVerdict(items, c.hazardClasses),
		ImagePath: imagePath,
		Items:     items,
	}, nil
}
