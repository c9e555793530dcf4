// Package claude implements the guidance Generator on the Anthropic API.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/safesitelabs/warden/internal/action"
)

const systemPrompt = `You write safety guidance for a logistics warehouse.
Given a hazard code and the observed reason, write an urgent, actionable
safety guideline in Korean, English, and Vietnamese. Each guideline must tell
workers what to stop doing and whom to report to.

Respond with JSON only, exactly in this shape:
{"guideline_ko": "...", "guideline_en": "...", "guideline_vi": "..."}`

const responseTokens = 1024

// Client implements action.Generator via the Anthropic messages API.
type Client struct {
	client anthropic.Client
	model  string
}

// New creates a guidance client with the given API key and model name.
func New(apiKey, model string) *Client {
	return &Client{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Generate produces the three-language guideline for one hazard.
func (c *Client) Generate(ctx context.Context, hazardCode, reason string) (*action.Guidelines, error) {
	prompt := fmt.Sprintf("Hazard code: %s\nObserved reason: %s", hazardCode, reason)

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: responseTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate guideline: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("empty generator response")
	}

	var g action.Guidelines
	if err := json.Unmarshal([]byte(cleanJSON(text)), &g); err != nil {
		return nil, fmt.Errorf("malformed guideline %q: %w", text, err)
	}
	return &g, nil
}

// cleanJSON strips markdown code fences the model may wrap around JSON.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
