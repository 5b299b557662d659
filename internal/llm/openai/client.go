package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"ideaforge/internal/llm"
	"ideaforge/pkg/httputil"
)

const chatCompletionsPath = "/chat/completions"

var _ llm.Completer = (*Client)(nil)

type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

type Client struct {
	http        *resty.Client
	model       string
	temperature float64
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewClient(apiKey string, cfg Config) *Client {
	retry := httputil.DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(apiKey).
		SetTransport(httputil.NewRetryTransport(nil, retry)).
		SetLogger(restyLogger{})
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{
		http:        client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var result chatResponse
	var apiErr errorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: userPrompt},
			},
			Temperature: c.temperature,
		}).
		SetResult(&result).
		SetError(&apiErr).
		ForceContentType("application/json").
		Post(chatCompletionsPath)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if resp.IsError() {
		return "", llm.NewServiceError(resp.StatusCode(), apiErr.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}
