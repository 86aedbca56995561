package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Terminal and retryable API failure classes. The retry policy keys off
// these, everything else counts as transient.
var (
	ErrQuotaExceeded = errors.New("api quota exceeded")
	ErrRateLimited   = errors.New("api rate limited")
	ErrAuthFailed    = errors.New("api authentication failed")
	ErrBadRequest    = errors.New("api rejected request")
)

// ContentPart is one element of a multimodal message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// ChatMessage is an OpenAI-compatible chat message. Content is a plain
// string for text messages or a part list for vision messages.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

func TextMessage(role, text string) ChatMessage {
	return ChatMessage{Role: role, Content: text}
}

func VisionMessage(prompt, imageURL string) ChatMessage {
	return ChatMessage{
		Role: "user",
		Content: []ContentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &ImageURL{URL: imageURL}},
		},
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// Chat posts a completion request and returns the first choice's content.
// Low temperature keeps extraction output stable. Forced JSON mode is only
// sent to models known to honor it.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage, model string, jsonMode bool) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: missing api key", ErrAuthFailed)
	}

	reqBody := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.1,
		MaxTokens:   4096,
		Stream:      false,
	}
	if jsonMode && strings.Contains(model, "DeepSeek") {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := strings.TrimSuffix(c.baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("new request",
		slog.String("type", "ai"),
		slog.String("model", model),
		slog.Int("messages", len(messages)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func classifyStatus(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, detail)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", ErrAuthFailed, status, detail)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, detail)
	}
	lower := strings.ToLower(detail)
	if strings.Contains(lower, "quota") || strings.Contains(lower, "insufficient balance") {
		return fmt.Errorf("%w: status %d: %s", ErrQuotaExceeded, status, detail)
	}
	return fmt.Errorf("request failed: status %d: %s", status, detail)
}
