package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	clientTimeout    = 20 * time.Second
	maxResponseBytes = 256 * 1024

	// TruncateBudget is the character cap for the no-AI fallback summary.
	TruncateBudget = 200

	summarizePrompt = "Summarize the following market update in at most two short sentences. " +
		"Mention the type of opportunity (funding, regulation, technology) and the affected sector if stated.\n\nText: %s"
)

// Summarizer wraps an OpenAI-compatible chat-completions endpoint. A zero
// API key leaves it disabled; Enrich then degrades to plain truncation.
type Summarizer struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewSummarizer(apiKey, baseURL, model string) *Summarizer {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Summarizer{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: clientTimeout},
	}
}

// Enabled reports whether the capability is configured.
func (s *Summarizer) Enabled() bool {
	return s.apiKey != ""
}

// Enrich rewrites text into a short summary. Any failure, including an
// unconfigured capability, falls back to text truncated to TruncateBudget
// runes with a trailing ellipsis. Never returns an error.
func (s *Summarizer) Enrich(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}
	if !s.Enabled() {
		return Truncate(text, TruncateBudget)
	}

	out, err := s.Complete(ctx, fmt.Sprintf(summarizePrompt, text))
	if err != nil {
		log.Printf("enrich: summarize failed, falling back to truncation: %v", err)
		return Truncate(text, TruncateBudget)
	}
	if out == "" {
		return Truncate(text, TruncateBudget)
	}
	return out
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete sends one user prompt and returns the model's text. Unlike
// Enrich this surfaces errors, so callers can decide their own fallback.
func (s *Summarizer) Complete(ctx context.Context, prompt string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("enrich: no api key configured")
	}

	body, err := json.Marshal(chatRequest{
		Model:       s.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
		MaxTokens:   150,
	})
	if err != nil {
		return "", fmt.Errorf("enrich: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("enrich: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("enrich: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("enrich: unexpected status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("enrich: decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("enrich: empty choices")
	}

	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// Truncate cuts s to limit runes, appending an ellipsis when it cut
// anything. Rune-based so multi-byte text never splits mid-character.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
