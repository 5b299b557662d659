package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ideaforge/pkg/prompts"
)

type recordingCompleter struct {
	reply   string
	err     error
	systems []string
	users   []string
}

func (r *recordingCompleter) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	r.systems = append(r.systems, systemPrompt)
	r.users = append(r.users, userPrompt)
	return r.reply, r.err
}

func testPrompts() *prompts.Prompts {
	return &prompts.Prompts{
		System: prompts.SystemPrompts{Default: "You are an expert assistant."},
		Post: prompts.PostPrompts{
			Copy:             "Write a post about {{.Topic}}.",
			ImageDescription: "Describe an image for {{.Topic}}: {{.Copy}}",
		},
	}
}

func TestPromptClientGenerateCopy(t *testing.T) {
	completer := &recordingCompleter{reply: "  Catchy post  \n"}
	client := NewPromptClient(completer, testPrompts())

	got, err := client.GenerateCopy(context.Background(), "quantum computing")
	if err != nil {
		t.Fatalf("GenerateCopy() error = %v", err)
	}
	if got != "Catchy post" {
		t.Errorf("GenerateCopy() = %q, want trimmed reply", got)
	}
	if completer.systems[0] != "You are an expert assistant." {
		t.Errorf("system prompt = %q", completer.systems[0])
	}
	if completer.users[0] != "Write a post about quantum computing." {
		t.Errorf("user prompt = %q", completer.users[0])
	}
}

func TestPromptClientGenerateImageDescription(t *testing.T) {
	completer := &recordingCompleter{reply: "A bright lab"}
	client := NewPromptClient(completer, testPrompts())

	got, err := client.GenerateImageDescription(context.Background(), "AI", "Post body")
	if err != nil {
		t.Fatalf("GenerateImageDescription() error = %v", err)
	}
	if got != "A bright lab" {
		t.Errorf("GenerateImageDescription() = %q", got)
	}
	if completer.users[0] != "Describe an image for AI: Post body" {
		t.Errorf("user prompt = %q", completer.users[0])
	}
}

func TestPromptClientErrors(t *testing.T) {
	serviceErr := NewServiceError(429, "rate limited")

	tests := []struct {
		name    string
		reply   string
		err     error
		wantErr error
	}{
		{name: "emptyReply", reply: "", wantErr: ErrEmptyResponse},
		{name: "whitespaceReply", reply: " \n\t ", wantErr: ErrEmptyResponse},
		{name: "serviceError", err: serviceErr, wantErr: serviceErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewPromptClient(&recordingCompleter{reply: tt.reply, err: tt.err}, testPrompts())
			_, err := client.GenerateCopy(context.Background(), "topic")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GenerateCopy() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPromptClientRenderError(t *testing.T) {
	p := testPrompts()
	p.Post.Copy = "{{.Missing}}"
	completer := &recordingCompleter{reply: "unused"}
	client := NewPromptClient(completer, p)

	_, err := client.GenerateCopy(context.Background(), "topic")
	if err == nil || !strings.Contains(err.Error(), "render prompt") {
		t.Fatalf("GenerateCopy() error = %v, want render prompt error", err)
	}
	if len(completer.users) != 0 {
		t.Error("completer should not be called when rendering fails")
	}
}

func TestNewServiceError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		message    string
		wantMsg    string
		wantError  string
	}{
		{name: "withMessage", statusCode: 401, message: "invalid api key", wantMsg: "invalid api key", wantError: "invalid api key (status 401)"},
		{name: "emptyMessage", statusCode: 500, message: "", wantMsg: DefaultErrorMessage, wantError: DefaultErrorMessage + " (status 500)"},
		{name: "blankMessage", statusCode: 0, message: "   ", wantMsg: DefaultErrorMessage, wantError: DefaultErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewServiceError(tt.statusCode, tt.message)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Error() != tt.wantError {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantError)
			}
		})
	}
}
