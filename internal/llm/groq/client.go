package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/conneroisu/groq-go"
	"github.com/conneroisu/groq-go/pkg/groqerr"

	"ideaforge/internal/llm"
)

var _ llm.Completer = (*Client)(nil)

type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
}

type Client struct {
	client      *groq.Client
	model       groq.ChatModel
	temperature float32
}

func NewClient(apiKey string, cfg Config) (*Client, error) {
	client, err := newGroqClient(apiKey, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &Client{
		client:      client,
		model:       groq.ChatModel(cfg.Model),
		temperature: float32(cfg.Temperature),
	}, nil
}

func newGroqClient(apiKey, baseURL string) (*groq.Client, error) {
	if baseURL == "" {
		return groq.NewClient(apiKey)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return groq.NewClient(apiKey, groq.WithBaseURL(baseURL))
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: systemPrompt},
			{Role: groq.RoleUser, Content: userPrompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		if serviceErr := toServiceError(err); serviceErr != nil {
			return "", serviceErr
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}

// toServiceError maps groq-go's HTTP failures to llm.ServiceError. It returns
// nil for transport and encoding errors.
func toServiceError(err error) *llm.ServiceError {
	var reqErr *groqerr.ErrRequest
	if errors.As(err, &reqErr) {
		message := ""
		var apiErr *groqerr.APIError
		if errors.As(reqErr.Err, &apiErr) {
			message = apiErr.Message
		}
		return llm.NewServiceError(reqErr.HTTPStatusCode, message)
	}

	var apiErr *groqerr.APIError
	if errors.As(err, &apiErr) {
		return llm.NewServiceError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	return nil
}
