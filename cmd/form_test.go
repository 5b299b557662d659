package cmd

import (
	"errors"
	"testing"

	"ideaforge/internal/app"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "1", want: 1},
		{input: " 5 ", want: 5},
		{input: "10", want: 10},
		{input: "0", wantErr: true},
		{input: "11", wantErr: true},
		{input: "-2", wantErr: true},
		{input: "2.5", wantErr: true},
		{input: "three", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseQuantity(tt.input, 10)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseQuantity(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseQuantity(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseQuantity(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	validate := notBlank(app.ErrMissingTopic)

	if err := validate("  \t"); !errors.Is(err, app.ErrMissingTopic) {
		t.Errorf("expected ErrMissingTopic for blank input, got %v", err)
	}
	if err := validate("coffee"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckFormat(t *testing.T) {
	for _, format := range []string{"text", "markdown", "json"} {
		if err := checkFormat(format); err != nil {
			t.Errorf("checkFormat(%q) error: %v", format, err)
		}
	}
	if err := checkFormat("html"); err == nil {
		t.Error("expected error for unknown format")
	}
}
