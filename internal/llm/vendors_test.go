package llm

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestResolveModel(t *testing.T) {
	tests := []struct {
		models map[string]string
		input  string
		want   string
	}{
		{anthropicModels, "claude-haiku", "claude-haiku-4-5-20251001"},
		{anthropicModels, "claude-sonnet", "claude-sonnet-4-20250514"},
		{openaiModels, "gpt-4o-mini", "gpt-4o-mini"},
		{geminiModels, "gemini-flash", "gemini-2.0-flash"},
		{geminiModels, "gemini-2.5-pro", "gemini-2.5-pro"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, tt.models); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeStopReason(t *testing.T) {
	for in, want := range map[string]string{
		"max_tokens": "max_tokens",
		"length":     "max_tokens",
		"MAX_TOKENS": "max_tokens",
		"end_turn":   "end",
		"stop":       "end",
		"":           "end",
	} {
		if got := normalizeStopReason(in); got != want {
			t.Errorf("normalizeStopReason(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapHTTPStatus(t *testing.T) {
	base := errors.New("boom")

	var rl *ErrRateLimit
	header := http.Header{"Retry-After": []string{"3"}}
	if !errors.As(mapHTTPStatus(http.StatusTooManyRequests, header, base), &rl) {
		t.Fatal("429 should map to ErrRateLimit")
	}
	if rl.RetryAfter != 3*time.Second {
		t.Fatalf("RetryAfter = %s, want 3s", rl.RetryAfter)
	}
	if !errors.As(mapHTTPStatus(http.StatusTooManyRequests, nil, base), &rl) || rl.RetryAfter != 0 {
		t.Fatalf("429 without header: %+v", rl)
	}

	var unavail *ErrProviderUnavailable
	for _, status := range []int{http.StatusBadGateway, http.StatusRequestTimeout, 529, 0} {
		if !errors.As(mapHTTPStatus(status, nil, base), &unavail) {
			t.Fatalf("%d should map to ErrProviderUnavailable", status)
		}
	}

	var rejected *ErrRequestRejected
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound} {
		if !errors.As(mapHTTPStatus(status, nil, base), &rejected) || rejected.Status != status {
			t.Fatalf("%d should map to ErrRequestRejected", status)
		}
	}
	if !errors.Is(mapHTTPStatus(http.StatusInternalServerError, nil, base), base) {
		t.Fatal("mapped error should wrap the cause")
	}
}

func TestRetryAfter(t *testing.T) {
	for value, want := range map[string]time.Duration{
		"2":                             2 * time.Second,
		" 10 ":                          10 * time.Second,
		"0":                             0,
		"-4":                            0,
		"Wed, 21 Oct 2026 07:28:00 GMT": 0,
		"":                              0,
	} {
		h := http.Header{}
		h.Set("Retry-After", value)
		if got := retryAfter(h); got != want {
			t.Errorf("retryAfter(%q) = %s, want %s", value, got, want)
		}
	}
}

func TestCheckTruncated(t *testing.T) {
	partial := json.RawMessage(`{"score": 7`)
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(checkTruncated(Request{Schema: gradeSchema()}, "max_tokens", partial), &maxTok) {
		t.Fatal("truncated structured output should fail")
	}
	if err := checkTruncated(Request{}, "max_tokens", json.RawMessage("The mean is")); err != nil {
		t.Fatalf("truncated chat reply should pass, got %v", err)
	}
	if err := checkTruncated(Request{Schema: gradeSchema()}, "end", partial); err != nil {
		t.Fatalf("complete output should pass, got %v", err)
	}
}

func TestNewOpenRouterProvider(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or", Model: "anthropic/claude-3-haiku"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "anthropic/claude-3-haiku" {
		t.Fatalf("model IDs pass through, got %q", p.ModelID())
	}
	if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "x"}); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
