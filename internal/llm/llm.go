package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ideaforge/pkg/prompts"
)

// DefaultErrorMessage is reported when a failed call carries no message.
const DefaultErrorMessage = "text-generation service error"

var ErrEmptyResponse = errors.New("empty response")

// Client produces the two texts that make up an idea.
type Client interface {
	GenerateCopy(ctx context.Context, topic string) (string, error)
	GenerateImageDescription(ctx context.Context, topic, postCopy string) (string, error)
}

// Completer sends one system and one user message to a chat-completion
// backend and returns the raw reply.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Factory builds a Client bound to a caller-supplied credential.
type Factory func(credential string) (Client, error)

type ServiceError struct {
	StatusCode int
	Message    string
}

func NewServiceError(statusCode int, message string) *ServiceError {
	message = strings.TrimSpace(message)
	if message == "" {
		message = DefaultErrorMessage
	}
	return &ServiceError{StatusCode: statusCode, Message: message}
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

var _ Client = (*PromptClient)(nil)

// PromptClient renders the idea prompts and hands them to a Completer.
type PromptClient struct {
	completer Completer
	prompts   *prompts.Prompts
}

func NewPromptClient(completer Completer, p *prompts.Prompts) *PromptClient {
	return &PromptClient{completer: completer, prompts: p}
}

func (c *PromptClient) GenerateCopy(ctx context.Context, topic string) (string, error) {
	prompt, err := c.prompts.RenderCopy(prompts.CopyParams{Topic: topic})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.generate(ctx, prompt)
}

func (c *PromptClient) GenerateImageDescription(ctx context.Context, topic, postCopy string) (string, error) {
	prompt, err := c.prompts.RenderImageDescription(prompts.ImageDescriptionParams{
		Topic: topic,
		Copy:  postCopy,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.generate(ctx, prompt)
}

func (c *PromptClient) generate(ctx context.Context, userPrompt string) (string, error) {
	content, err := c.completer.Complete(ctx, c.prompts.System.Default, userPrompt)
	if err != nil {
		return "", err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}
