package openai

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/insighter-ai/insighter/pkg/ai"
)

const (
	NAME = "openai"

	// The original agents all run hot; answers are non-deterministic by
	// contract.
	DEFAULT_TEMPERATURE = 0.9
)

type Driver struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewClient(token, proxy string) *openai.Client {
	cfg := openai.DefaultConfig(token)
	if proxy != "" {
		cfg.BaseURL = proxy
	}

	return openai.NewClientWithConfig(cfg)
}

func New(token, proxy, model string, temperature float32) *Driver {
	if model == "" {
		model = openai.GPT4oMini
	}
	if temperature == 0 {
		temperature = DEFAULT_TEMPERATURE
	}

	return &Driver{
		client:      NewClient(token, proxy),
		model:       model,
		temperature: temperature,
	}
}

func (s *Driver) Lang() string {
	return ai.MODEL_BASE_LANGUAGE_EN
}

func (s *Driver) Complete(ctx context.Context, prompt string) (string, error) {
	slog.Debug("Complete", slog.String("driver", NAME), slog.String("model", s.model))

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: s.temperature,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil || len(resp.Choices) != 1 {
		return "", fmt.Errorf("Completion error: err:%v len(choices):%v", err, len(resp.Choices))
	}

	return resp.Choices[0].Message.Content, nil
}
