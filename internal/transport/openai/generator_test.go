package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/jeecollege/collegerag/internal/domain"
)

func testGenRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		SystemInstruction: "system text",
		Prompt:            "prompt text",
		Temperature:       0.2,
		MaxOutputTokens:   256,
	}
}

// chatRequest mirrors the fields of the chat completion request the tests
// need to inspect.
type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, content string, captured *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     12,
				"completion_tokens": 7,
				"total_tokens":      19,
			},
		})
	}))
}

func testGenerator(url string) *Generator {
	return NewGenerator(&GeneratorConfig{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})
}

func TestGenerator_Generate(t *testing.T) {
	var captured chatRequest
	server := chatServer(t, "  The hostel is good.  ", &captured)
	defer server.Close()

	res, err := testGenerator(server.URL).Generate(context.Background(), testGenRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if res.Text != "The hostel is good." {
		t.Errorf("response must be trimmed, got %q", res.Text)
	}
	if res.PromptTokens != 12 || res.CompletionTokens != 7 {
		t.Errorf("usage not propagated: %+v", res)
	}

	if len(captured.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "system text" {
		t.Errorf("unexpected system message %+v", captured.Messages[0])
	}
	if captured.Messages[1].Role != "user" || captured.Messages[1].Content != "prompt text" {
		t.Errorf("unexpected user message %+v", captured.Messages[1])
	}
	if captured.Temperature != 0.2 {
		t.Errorf("temperature = %v, expected 0.2", captured.Temperature)
	}
	if captured.MaxTokens != 256 {
		t.Errorf("max_tokens = %d, expected 256", captured.MaxTokens)
	}
}

func TestGenerator_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "backend overloaded"},
		})
	}))
	defer server.Close()

	if _, err := testGenerator(server.URL).Generate(context.Background(), testGenRequest()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestGenerator_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "test-model",
			"choices": []any{},
		})
	}))
	defer server.Close()

	if _, err := testGenerator(server.URL).Generate(context.Background(), testGenRequest()); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
