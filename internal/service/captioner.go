package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/postloom/postloom/internal/config"
)

// Captioner generates caption text through an external chat-completion API.
type Captioner struct {
	config *config.AIConfig
	logger *zap.Logger
	client *http.Client
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

func NewCaptioner(cfg *config.AIConfig, logger *zap.Logger) *Captioner {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Captioner{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate returns one caption for the given theme/platform/tone. The
// completion text is returned verbatim; platform character limits are not
// enforced here. Errors are returned for the caller to recover per slot.
func (c *Captioner) Generate(ctx context.Context, theme, platform string, tone Tone) (string, error) {
	if c.config.APIKey == "" {
		return "", fmt.Errorf("ai api key not configured")
	}

	prompt := fmt.Sprintf(
		"Write a social media post for %s about %q. Use a %s tone. "+
			"Respond with the post text only, no quotes and no explanations.",
		platform, theme, tone)

	body, err := json.Marshal(completionRequest{
		Model: c.config.Model,
		Messages: []completionMessage{
			{Role: "system", Content: "You are a social media copywriter."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	// One retry on transport errors keeps a flaky connection from forcing
	// the fallback path for the whole slot.
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		text, err := c.complete(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	return "", lastErr
}

func (c *Captioner) complete(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var response completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}

	text := strings.TrimSpace(response.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("completion API returned empty content")
	}

	return text, nil
}
