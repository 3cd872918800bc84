// Package ai produces persona replies and moderation verdicts through an
// OpenAI-compatible chat completion API.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/internal/metrics"
	"github.com/goonhub/goonhub/pkg/config"
)

// PlaceholderReply is returned when no API key is configured.
const PlaceholderReply = "Hey! I can't chat properly right now, but thanks for the message. Check back soon!"

// ErrEmptyReply is returned when the model produced no content.
var ErrEmptyReply = errors.New("ai returned an empty reply")

// allowedCategories are flags that do not block a message on an adult platform.
var allowedCategories = map[string]bool{
	"sexual": true,
}

// Moderation is the verdict on a piece of user content.
type Moderation struct {
	IsAppropriate bool   `json:"is_appropriate"`
	Reason        string `json:"reason,omitempty"`
}

// Responder generates persona replies and moderates user input.
//
//go:generate mockery --name Responder --output mocks --outpkg mocks --filename mock_responder.go --with-expecter
type Responder interface {
	Reply(ctx context.Context, userMessage, systemPrompt string) (string, error)
	Moderate(ctx context.Context, content string) (*Moderation, error)
}

// NewResponder returns an OpenAI backed responder, or the placeholder when
// cfg has no API key.
func NewResponder(cfg *config.AIConfig, logger *zap.Logger) Responder {
	if cfg.APIKey == "" {
		logger.Warn("AI API key not configured, persona chat will return placeholder replies")
		return Placeholder{}
	}
	return NewOpenAI(cfg, logger)
}

// Placeholder answers with a fixed reply and approves all content.
type Placeholder struct{}

func (Placeholder) Reply(context.Context, string, string) (string, error) {
	return PlaceholderReply, nil
}

func (Placeholder) Moderate(context.Context, string) (*Moderation, error) {
	return &Moderation{IsAppropriate: true}, nil
}

// OpenAI calls the chat completion and moderation endpoints.
type OpenAI struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	moderate    bool
	timeout     time.Duration
	logger      *zap.Logger
}

// NewOpenAI creates an OpenAI responder from cfg.
func NewOpenAI(cfg *config.AIConfig, logger *zap.Logger) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		moderate:    cfg.ModerationOn,
		timeout:     cfg.RequestTimeout,
		logger:      logger,
	}
}

func (o *OpenAI) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.timeout)
}

func (o *OpenAI) Reply(ctx context.Context, userMessage, systemPrompt string) (reply string, err error) {
	start := time.Now()
	defer func() {
		metrics.ChatCompletions.WithLabelValues(metrics.Status(err)).Inc()
		metrics.ChatCompletionDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	reply = strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

func (o *OpenAI) Moderate(ctx context.Context, content string) (*Moderation, error) {
	if !o.moderate {
		return &Moderation{IsAppropriate: true}, nil
	}

	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	resp, err := o.client.Moderations(ctx, openai.ModerationRequest{Input: content})
	if err != nil {
		return nil, fmt.Errorf("moderation request failed: %w", err)
	}

	var blocked []string
	for _, result := range resp.Results {
		if !result.Flagged {
			continue
		}
		for _, category := range flaggedCategories(result.Categories) {
			if !allowedCategories[category] {
				blocked = append(blocked, category)
			}
		}
	}
	if len(blocked) == 0 {
		return &Moderation{IsAppropriate: true}, nil
	}
	sort.Strings(blocked)
	o.logger.Info("message blocked by moderation", zap.Strings("categories", blocked))
	return &Moderation{
		IsAppropriate: false,
		Reason:        "message flagged for " + strings.Join(blocked, ", "),
	}, nil
}

// flaggedCategories lists the JSON names of the categories set to true.
func flaggedCategories(categories openai.ResultCategories) []string {
	raw, err := json.Marshal(categories)
	if err != nil {
		return nil
	}
	var flags map[string]bool
	if err := json.Unmarshal(raw, &flags); err != nil {
		return nil
	}
	var out []string
	for name, set := range flags {
		if set {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
