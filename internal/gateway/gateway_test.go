package gateway

import (
	"context"
	"strings"
	"testing"
)

func TestParseModel(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantProvider string
		wantModel    string
		wantErr      string
	}{
		{name: "valid", input: "gemini/gemini-2.5-flash", wantProvider: "gemini", wantModel: "gemini-2.5-flash"},
		{name: "model with slash", input: "openai/ft:gpt-4o/custom", wantProvider: "openai", wantModel: "ft:gpt-4o/custom"},
		{name: "missing slash", input: "gemini", wantErr: "invalid model format"},
		{name: "empty provider", input: "/gpt-4o", wantErr: "invalid model format"},
		{name: "empty model", input: "anthropic/", wantErr: "invalid model format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, modelName, err := ParseModel(tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %q", tt.wantErr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseModel returned error: %v", err)
			}
			if provider != tt.wantProvider {
				t.Fatalf("expected provider %q, got %q", tt.wantProvider, provider)
			}
			if modelName != tt.wantModel {
				t.Fatalf("expected model %q, got %q", tt.wantModel, modelName)
			}
		})
	}
}

func TestNewCompleterUnknownProvider(t *testing.T) {
	completer, err := NewCompleter("unknown", "key", "some-model")
	if err == nil {
		t.Fatal("expected error for unknown provider, got nil")
	}
	if completer != nil {
		t.Fatalf("expected nil completer, got %#v", completer)
	}
	if !strings.Contains(err.Error(), "unknown provider") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnavailableCompleter(t *testing.T) {
	completer := UnavailableCompleter(context.DeadlineExceeded)

	_, err := completer.Complete(context.Background(), CompletionRequest{User: "hi"})
	if err == nil {
		t.Fatal("expected error from unavailable completer")
	}
	if !strings.Contains(err.Error(), "unavailable") {
		t.Fatalf("unexpected error: %v", err)
	}
}
