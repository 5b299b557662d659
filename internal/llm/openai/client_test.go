package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ideaforge/internal/llm"
)

func newTestClient(serverURL string) *Client {
	return NewClient("test-api-key", Config{
		BaseURL:     serverURL,
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	})
}

func chatJSON(content string) string {
	resp := map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatJSON("Hello")))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).Complete(context.Background(), "system text", "user text")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "Hello" {
		t.Errorf("Complete() = %q, want %q", got, "Hello")
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-api-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Model != "gpt-3.5-turbo" {
		t.Errorf("model = %q", gotBody.Model)
	}
	if gotBody.Temperature != 0.7 {
		t.Errorf("temperature = %v", gotBody.Temperature)
	}
	if len(gotBody.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "system" || gotBody.Messages[0].Content != "system text" {
		t.Errorf("system message = %+v", gotBody.Messages[0])
	}
	if gotBody.Messages[1].Role != "user" || gotBody.Messages[1].Content != "user text" {
		t.Errorf("user message = %+v", gotBody.Messages[1])
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name           string
		statusCode     int
		contentType    string
		responseBody   string
		wantStatus     int
		wantErrContain string
	}{
		{
			name:           "serviceMessage",
			statusCode:     http.StatusTooManyRequests,
			contentType:    "application/json",
			responseBody:   `{"error":{"message":"rate limited","type":"requests"}}`,
			wantStatus:     http.StatusTooManyRequests,
			wantErrContain: "rate limited",
		},
		{
			name:           "missingMessage",
			statusCode:     http.StatusUnauthorized,
			contentType:    "application/json",
			responseBody:   `{"error":{}}`,
			wantStatus:     http.StatusUnauthorized,
			wantErrContain: llm.DefaultErrorMessage,
		},
		{
			name:           "nonJSONErrorBody",
			statusCode:     http.StatusBadGateway,
			contentType:    "text/html",
			responseBody:   `<html>bad gateway</html>`,
			wantStatus:     http.StatusBadGateway,
			wantErrContain: llm.DefaultErrorMessage,
		},
		{
			name:           "malformedSuccessBody",
			statusCode:     http.StatusOK,
			contentType:    "application/json",
			responseBody:   `{"choices": [`,
			wantErrContain: "chat completion",
		},
		{
			name:           "noChoices",
			statusCode:     http.StatusOK,
			contentType:    "application/json",
			responseBody:   `{"choices": []}`,
			wantErrContain: "no choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Complete(context.Background(), "sys", "user")
			if err == nil {
				t.Fatalf("Complete() expected error containing %q", tt.wantErrContain)
			}
			if !strings.Contains(err.Error(), tt.wantErrContain) {
				t.Errorf("Complete() error = %v, want containing %q", err, tt.wantErrContain)
			}

			var serviceErr *llm.ServiceError
			isService := errors.As(err, &serviceErr)
			if tt.wantStatus != 0 {
				if !isService {
					t.Fatalf("expected *llm.ServiceError, got %T", err)
				}
				if serviceErr.StatusCode != tt.wantStatus {
					t.Errorf("StatusCode = %d, want %d", serviceErr.StatusCode, tt.wantStatus)
				}
			} else if isService {
				t.Errorf("unexpected *llm.ServiceError for %s", tt.name)
			}
		})
	}
}

func TestCompleteDoesNotRetryByDefault(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestCompleteRetriesWhenConfigured(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}
		_, _ = w.Write([]byte(chatJSON("second time")))
	}))
	defer server.Close()

	client := NewClient("key", Config{BaseURL: server.URL, Model: "m", MaxRetries: 1})
	got, err := client.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "second time" {
		t.Errorf("Complete() = %q", got)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestCompleteHonoursContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL).Complete(ctx, "sys", "user")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Complete() error = %v, want context.DeadlineExceeded", err)
	}
}
