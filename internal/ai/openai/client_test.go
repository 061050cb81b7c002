package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/Lin-Jiong-HDU/nlsh/internal/ai"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-key", "gpt-4", "https://api.openai.com/v1")

	if client == nil {
		t.Fatal("NewClient returned nil")
	}
	if client.apiKey != "test-key" {
		t.Errorf("Expected apiKey 'test-key', got '%s'", client.apiKey)
	}
	if client.model != "gpt-4" {
		t.Errorf("Expected model 'gpt-4', got '%s'", client.model)
	}
}

func TestClient_Generate(t *testing.T) {
	var gotAuth string
	var gotBody struct {
		Model    string       `json:"model"`
		Messages []ai.Message `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected /chat/completions, got %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"intent\":\"LIST_FILES\"}"}}]}`))
	}))
	defer srv.Close()

	client := NewClient("k", "gpt-4o-mini", srv.URL)
	out, err := client.Generate(context.Background(), "show stuff")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if out != `{"intent":"LIST_FILES"}` {
		t.Errorf("Unexpected content: %q", out)
	}
	if gotAuth != "Bearer k" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
	if gotBody.Model != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %q", gotBody.Model)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[1].Role != "user" || gotBody.Messages[1].Content != "show stuff" {
		t.Errorf("Unexpected messages: %+v", gotBody.Messages)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusUnauthorized, `{"error":"bad key"}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"bad json", http.StatusOK, `{choices`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient("", "m", srv.URL).Generate(context.Background(), "x")
			if err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

// Add integration test (only run with NLSH_INTEGRATION_TEST=1)
func TestIntegration_RealAPI(t *testing.T) {
	if os.Getenv("NLSH_INTEGRATION_TEST") == "" {
		t.Skip("Set NLSH_INTEGRATION_TEST=1 to run integration tests")
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set")
	}

	client := NewClient(apiKey, "gpt-4o-mini", "https://api.openai.com/v1")
	response, err := client.Chat(context.Background(), []ai.Message{
		{Role: "user", Content: "Say 'Hello, nlsh!'"},
	})

	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if response == "" {
		t.Error("Expected non-empty response")
	}

	t.Logf("Response: %s", response)
}
