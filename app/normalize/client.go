package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/softdex/softdex/app/cfg"
)

// ErrNotConfigured marks the configuration failure case: no API credential
// is present, so no model call was attempted. Callers must treat this
// distinctly from a transient call failure.
var ErrNotConfigured = errors.New("openai api key not configured")

// Client issues chat-completion requests against an OpenAI-compatible
// endpoint with a forced JSON response format.
type Client struct {
	endpoint         string
	apiKey           string
	model            string
	temperature      float64
	maxTokens        int
	tokensPerProduct int
	httpClient       *http.Client
}

func NewClient() *Client {
	c := cfg.Get()

	return &Client{
		endpoint:         c.OpenAIBaseURL,
		apiKey:           c.OpenAIAPIKey,
		model:            c.Model,
		temperature:      c.Temperature,
		maxTokens:        c.MaxTokens,
		tokensPerProduct: c.TokensPerProduct,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Run sends the prompt pair and returns the model's message content. The
// response token budget scales with the number of products covered by the
// request, capped at the configured maximum.
func (c *Client) Run(ctx context.Context, systemPrompt, userPrompt string, productCount int) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	if productCount < 1 {
		productCount = 1
	}
	tokens := c.tokensPerProduct * productCount
	if tokens > c.maxTokens {
		tokens = c.maxTokens
	}

	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   tokens,
		Temperature: c.temperature,
	}
	request.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat endpoint error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat response contains no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
