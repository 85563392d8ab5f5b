package completion

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/spec-kit/ecomarket-assistant/internal/config"
	apperrors "github.com/spec-kit/ecomarket-assistant/pkg/util/errorutil"
)

// OpenAIClient adapts the OpenAI chat completions API to the Client port.
type OpenAIClient struct {
	client  openai.Client
	model   string
	timeout config.OpenAIConfig
	logger  *zap.Logger
}

// NewOpenAIClient builds the adapter. An empty API key returns nil so the
// pipeline runs in fallback-only mode.
func NewOpenAIClient(cfg config.OpenAIConfig, logger *zap.Logger) *OpenAIClient {
	if cfg.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not provided; completions disabled")
		return nil
	}
	return &OpenAIClient{
		client:  openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:   cfg.Model,
		timeout: cfg,
		logger:  logger,
	}
}

// Complete runs one chat completion under the configured deadline.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout.Timeout())
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		c.logger.Warn("completion request failed", zap.Error(err))
		return "", apperrors.NewCapabilityUnavailable("completion model", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewCapabilityUnavailable("completion model", errors.New("empty choices"))
	}
	return resp.Choices[0].Message.Content, nil
}
