package vlm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const analyzePrompt = `You are the AI safety officer of a monitored logistics facility.
The attached image is a CCTV frame. Examine it closely and assess the
potential safety risk.

- Judge risk_level as one of "LOW" (safe), "MED" (caution), "HIGH" (severe).
- Identify hazard_code as the matching dataset code (for example "UA-01" for
  a worker without a helmet, "UC-10" for improper stacking). Use "NONE" when
  no hazard applies.
- Explain the reason for your judgment in one clear sentence.

Respond with JSON only, exactly in this shape:
{"risk_level": "...", "hazard_code": "...", "reason": "..."}`

// Client calls an OpenAI-compatible chat-completions endpoint with the image
// attached inline, forcing a JSON-object response.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates an analyzer client. baseURL is the API root, for example
// "https://api.openai.com/v1".
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze encodes the image, asks the model for a risk assessment, and parses
// the structured reply. Every failure path returns an error so the triage
// controller can degrade to a "no assessment" prediction.
func (c *Client) Analyze(ctx context.Context, imagePath string) (*Assessment, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: analyzePrompt},
				{Type: "image_url", ImageURL: &imageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", mimeFor(imagePath), encoded),
				}},
			},
		}},
		MaxTokens:      300,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return nil, fmt.Errorf("analyzer error %d: %s", resp.StatusCode, string(respBody))
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("analyzer returned no choices")
	}

	var as Assessment
	if err := json.Unmarshal([]byte(cleanJSON(out.Choices[0].Message.Content)), &as); err != nil {
		return nil, fmt.Errorf("malformed assessment %q: %w", out.Choices[0].Message.Content, err)
	}
	as.ImagePath = imagePath
	return &as, nil
}

// cleanJSON strips markdown code fences some models wrap around JSON output.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

func mimeFor(imagePath string) string {
	if strings.EqualFold(filepath.Ext(imagePath), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
