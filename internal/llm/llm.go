// Package llm wraps the chat-completion service used for utterance
// understanding. Any OpenAI-compatible endpoint works; the default targets
// Groq, which serves the model the assistant was tuned against.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/sarankoundinya2000/alfie/internal/models"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"

	// Extraction is expected to be deterministic enough at this temperature;
	// the value matches what the prompts were tuned with.
	extractionTemperature = 0.5
)

// Client performs synchronous completions against the language service.
type Client interface {
	// Complete returns the raw text of a single non-streaming completion.
	Complete(ctx context.Context, system, user string) (string, error)

	// CompleteJSON is Complete constrained to JSON-only output. The returned
	// string is the JSON payload with any markdown fencing stripped.
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// Config holds the language service connection settings.
type Config struct {
	APIKey  string
	BaseURL string // empty means the Groq endpoint
	Model   string // empty means llama-3.3-70b-versatile
}

type client struct {
	api    *openai.Client
	model  string
	logger *slog.Logger
}

// New creates a Client for an OpenAI-compatible completion endpoint.
func New(cfg Config, logger *slog.Logger) Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURL

	return &client{
		api:    openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}
}

func (c *client) Complete(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, nil)
}

func (c *client) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
	content, err := c.complete(ctx, system, user, format)
	if err != nil {
		return "", err
	}
	return StripFence(content), nil
}

func (c *client) complete(ctx context.Context, system, user string, format *openai.ChatCompletionResponseFormat) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: extractionTemperature,
		TopP:        1,
		Stream:      false,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: format,
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("Language service request failed", "error", err, "latency", time.Since(start))
		return "", &models.ExternalServiceError{Service: "language service", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &models.ExternalServiceError{Service: "language service", Err: fmt.Errorf("empty response")}
	}

	c.logger.Debug("Language service completion finished",
		"latency", time.Since(start), "tokens", resp.Usage.TotalTokens)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var fencePattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// StripFence removes a surrounding markdown code fence, which some models
// emit even in JSON mode.
func StripFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	if m := fencePattern.FindStringSubmatch(content); len(m) > 1 {
		return m[1]
	}
	return content
}
