package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func completionBody(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
}

func TestSummarize_UsesFreeModelListing(t *testing.T) {
	var gotModel string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]interface{}{
					{"id": "acme/paid-model", "pricing": map[string]string{"prompt": "0.01", "completion": "0.02"}},
					{"id": "openchat/openchat-7b:free", "pricing": map[string]string{"prompt": "0", "completion": "0"}},
					{"id": "google/gemini-flash:free", "pricing": map[string]string{"prompt": "0", "completion": "0"}},
				},
			})
		case "/chat/completions":
			var payload map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("invalid payload: %v", err)
			}
			gotModel = payload["model"].(string)
			if r.Header.Get("Authorization") != "Bearer test-key" {
				t.Fatalf("missing auth header, got %q", r.Header.Get("Authorization"))
			}
			json.NewEncoder(w).Encode(completionBody("## Summary\nShort sync."))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: ts.URL})
	got, err := client.Summarize(context.Background(), "Alice: hello")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if got != "## Summary\nShort sync." {
		t.Fatalf("unexpected summary %q", got)
	}
	// gemini outranks openchat regardless of listing order.
	if gotModel != "google/gemini-flash:free" {
		t.Fatalf("used model %q, want gemini first", gotModel)
	}
}

func TestSummarize_FallsThroughFailingModels(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models":
			w.WriteHeader(http.StatusInternalServerError)
		case "/chat/completions":
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			json.NewEncoder(w).Encode(completionBody("done"))
		}
	}))
	defer ts.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: ts.URL})
	got, err := client.Summarize(context.Background(), "Bob: status update")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if got != "done" {
		t.Fatalf("unexpected summary %q", got)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("made %d completion calls, want 2", calls)
	}
}

func TestSummarize_UnauthorizedAbortsImmediately(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models":
			w.WriteHeader(http.StatusInternalServerError)
		case "/chat/completions":
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer ts.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "bad", BaseURL: ts.URL})
	if _, err := client.Summarize(context.Background(), "text"); err == nil {
		t.Fatal("expected error for unauthorized key")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("made %d completion calls, want 1", calls)
	}
}

func TestSortByPreference(t *testing.T) {
	in := []string{"a/zephyr:free", "b/unknown:free", "c/gemini:free", "d/llama-3:free"}
	got := sortByPreference(in)
	want := []string{"c/gemini:free", "d/llama-3:free", "a/zephyr:free", "b/unknown:free"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
