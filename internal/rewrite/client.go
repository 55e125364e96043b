// Package rewrite polishes listing copy through an OpenAI-compatible chat
// completions endpoint.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"
	defaultTimeout = 60 * time.Second

	temperature = 0.7
	topP        = 0.9
	maxTokens   = 1500
)

const systemPromptTemplate = `You are a copywriter for second-hand marketplace listings who strictly follows the platform's content rules.

Your task:
1. Rewrite the listing creatively, highlighting its selling points from a fresh angle each time.
2. Keep every core fact, figure, and promise of the original (price, quantity, service terms).
3. Vary the style and sentence structure between rewrites.

Compliance:
- Never use vulgar, sexual, violent, or politically sensitive wording.
- Never promise unrealistic returns or use exaggerated or misleading claims.
- Rephrase grey-area descriptions in compliant terms.
- Keep the tone positive, honest, and trustworthy.

Preprocessing: ignore bracketed emoji codes such as [fire] and #hashtags in the original.

Banned words (never use these; replace them with suitable alternatives):
%s

Output: a single conversational rewrite of the listing, with no explanation of your changes.`

// Config configures a Client.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	BannedWordsPath string
}

// Client rewrites text via the chat completions API. It never returns an
// error: if anything goes wrong the input text is returned unchanged.
type Client struct {
	apiKey       string
	model        string
	openai       *openai.Client
	systemPrompt string
}

// NewClient builds a Client. An unreadable banned-words file is logged and
// otherwise ignored.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		openai:       openai.NewClientWithConfig(clientConfig),
		systemPrompt: fmt.Sprintf(systemPromptTemplate, loadBannedWords(cfg.BannedWordsPath)),
	}
}

func loadBannedWords(path string) string {
	if path == "" {
		return "(none provided)"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("could not read banned words file", "path", path, "error", err)
		return "(none provided)"
	}
	words := strings.TrimSpace(string(data))
	if words == "" {
		return "(none provided)"
	}
	return words
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Rewrite returns a rewritten version of text, or text itself on failure.
func (c *Client) Rewrite(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if !c.Enabled() {
		slog.Warn("copy rewrite skipped: no API key configured")
		return text
	}

	out, err := c.complete(ctx, text)
	if err != nil {
		slog.Error("copy rewrite failed", "error", err)
		return text
	}
	return out
}

func (c *Client) complete(ctx context.Context, text string) (string, error) {
	resp, err := c.openai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Rewrite the following listing:\n\n" + text,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("response has no choices")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("response content is empty")
	}
	return out, nil
}
