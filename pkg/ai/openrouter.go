// Package ai provides the LLM client used for post-call transcript
// summarization.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	defaultOpenRouterURL = "https://openrouter.ai/api/v1"
	modelCacheDuration   = time.Hour
)

// fallbackModels is used when the live models listing cannot be fetched.
var fallbackModels = []string{
	"google/gemini-2.0-flash-exp:free",
	"meta-llama/llama-3-8b-instruct:free",
	"microsoft/phi-3-mini-128k-instruct:free",
	"huggingfaceh4/zephyr-7b-beta:free",
	"openchat/openchat-7b:free",
}

// preferredOrder ranks free models by rough capability; models matching an
// earlier substring are tried first.
var preferredOrder = []string{"gemini", "llama-3", "mistral", "phi", "zephyr"}

const summarySystemPrompt = `You are a meeting transcript summarizer.

STRICT RULES:
1. ONLY summarize what was ACTUALLY said in the transcript below.
2. DO NOT invent, hallucinate, or add ANY content that is not explicitly in the transcript.
3. If the transcript is short (1-2 sentences), provide a proportionally short summary.
4. If there are no action items or decisions, say "None identified."
5. Use the exact speaker names from the transcript.
6. Be literal and accurate, NOT creative.

Format:
## Summary
[Brief summary of what was discussed]

## Speakers
[List speakers mentioned]

## Key Points
[Only points actually mentioned]

## Action Items
[Only if explicitly stated, otherwise "None identified"]`

// OpenRouterConfig configures the summarization client.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Referer string
	Title   string
}

// OpenRouterClient calls OpenRouter chat completions, preferring whichever
// free models are currently available and falling through the list on
// per-model failures.
type OpenRouterClient struct {
	apiKey  string
	baseURL string
	referer string
	title   string
	client  *http.Client

	mu          sync.Mutex
	cachedFree  []string
	lastFetched time.Time
}

// NewOpenRouterClient creates an OpenRouter client.
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenRouterURL
	}
	return &OpenRouterClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(base, "/"),
		referer: cfg.Referer,
		title:   cfg.Title,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model       string      `json:"model,omitempty"`
	Messages    interface{} `json:"messages,omitempty"`
	Temperature float64     `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type modelsResponse struct {
	Data []struct {
		ID      string `json:"id"`
		Pricing struct {
			Prompt     string `json:"prompt"`
			Completion string `json:"completion"`
		} `json:"pricing"`
	} `json:"data"`
}

// freeModels returns the zero-cost model ids, cached for an hour. On any
// fetch failure the static fallback list is returned uncached.
func (c *OpenRouterClient) freeModels(ctx context.Context) []string {
	c.mu.Lock()
	if len(c.cachedFree) > 0 && time.Since(c.lastFetched) < modelCacheDuration {
		out := c.cachedFree
		c.mu.Unlock()
		return out
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return fallbackModels
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fallbackModels
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fallbackModels
	}

	var mr modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return fallbackModels
	}
	var free []string
	for _, m := range mr.Data {
		if m.Pricing.Prompt == "0" && m.Pricing.Completion == "0" {
			free = append(free, m.ID)
		}
	}
	if len(free) == 0 {
		return fallbackModels
	}

	c.mu.Lock()
	c.cachedFree = free
	c.lastFetched = time.Now()
	c.mu.Unlock()
	return free
}

func preferenceRank(model string) int {
	for i, p := range preferredOrder {
		if strings.Contains(model, p) {
			return i
		}
	}
	return len(preferredOrder)
}

func sortByPreference(models []string) []string {
	out := make([]string, len(models))
	copy(out, models)
	sort.SliceStable(out, func(i, j int) bool {
		return preferenceRank(out[i]) < preferenceRank(out[j])
	})
	return out
}

// Summarize sends the transcript through the first free model that answers.
// A 401 aborts immediately since every model would fail the same way.
func (c *OpenRouterClient) Summarize(ctx context.Context, transcript string) (string, error) {
	models := sortByPreference(c.freeModels(ctx))

	var lastErr error
	for _, model := range models {
		content, err := c.complete(ctx, model, transcript)
		if err == nil {
			return content, nil
		}
		if se, ok := err.(*statusError); ok && se.code == http.StatusUnauthorized {
			return "", fmt.Errorf("summary service unauthorized: check API key")
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no models available")
	}
	return "", fmt.Errorf("failed to generate summary after multiple attempts: %w", lastErr)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("openrouter returned status %d", e.code)
}

func (c *OpenRouterClient) complete(ctx context.Context, model, transcript string) (string, error) {
	reqBody := chatRequest{
		Model: model,
		Messages: []map[string]string{
			{"role": "system", "content": summarySystemPrompt},
			{"role": "user", "content": "Transcript to summarize:\n\n" + transcript},
		},
		Temperature: 0.1,
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", &statusError{code: resp.StatusCode}
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty response from model %s", model)
	}
	return cr.Choices[0].Message.Content, nil
}
