package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-sonnet-4-20250514",
	}
}

// anthropicReply serves a message whose content is the given text blocks.
func anthropicReply(stopReason string, texts ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blocks := make([]map[string]any, len(texts))
		for i, text := range texts {
			blocks[i] = map[string]any{"type": "text", "text": text}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     blocks,
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": stopReason,
			"usage":       map[string]any{"input_tokens": 310, "output_tokens": 45},
		})
	}
}

func anthropicFailure(status int, errType string, header http.Header) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": errType, "message": errType},
		})
	}
}

func gradeRequest() Request {
	return Request{
		System: "You grade statistics answers against a rubric.",
		Messages: []Message{{
			Role:    RoleUser,
			Content: "Question: why does the standard error shrink with n?\nAnswer: because we divide by sqrt(n).",
		}},
		MaxTokens: 256,
		Schema:    gradeSchema(),
	}
}

func TestAnthropicProvider_GradeRequest(t *testing.T) {
	var body map[string]any
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		anthropicReply("end_turn", `{"score":85,"feedback":"Correct: SE = sigma/sqrt(n).","verdict":"pass"}`)(w, r)
	})

	resp, err := p.Generate(context.Background(), gradeRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 310 || resp.Usage.TotalTokens != 355 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}

	system, _ := json.Marshal(body["system"])
	if !strings.Contains(string(system), "rubric") {
		t.Fatalf("system prompt not sent: %s", system)
	}
	output, _ := json.Marshal(body["output_config"])
	if !strings.Contains(string(output), `"maximum":100`) || !strings.Contains(string(output), `"json_schema"`) {
		t.Fatalf("grade schema not sent with its bounds: %s", output)
	}
}

func TestAnthropicProvider_GradeFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(error) bool
	}{
		{
			"score above range",
			anthropicReply("end_turn", `{"score":140,"feedback":"Excellent."}`),
			isInvalid,
		},
		{
			"feedback missing",
			anthropicReply("end_turn", `{"score":60}`),
			isInvalid,
		},
		{
			"truncated at max tokens",
			anthropicReply("max_tokens", `{"score":60,"feedback":"The standard err`),
			isTruncated,
		},
		{
			"refusal",
			anthropicReply("refusal", `I can't help with that.`),
			isBlocked,
		},
		{
			"no text blocks",
			anthropicReply("end_turn"),
			isInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, tt.handler)
			_, err := p.Generate(context.Background(), gradeRequest())
			if !tt.check(err) {
				t.Fatalf("unexpected error %T: %v", err, err)
			}
		})
	}
}

func TestAnthropicProvider_ChatReplyJoinsBlocks(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicReply("max_tokens",
		"A 95% confidence interval ", "is a range built so that 95% of such ranges"))

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "What does a 95% CI mean?"}},
		MaxTokens: 64,
	})
	if err != nil {
		t.Fatalf("a truncated chat reply should still be returned: %v", err)
	}
	if got := string(resp.Content); got != "A 95% confidence interval is a range built so that 95% of such ranges" {
		t.Fatalf("content = %q", got)
	}
	if resp.StopReason != "max_tokens" {
		t.Fatalf("expected stop reason 'max_tokens', got %q", resp.StopReason)
	}
}

func TestAnthropicProvider_RateLimit(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicFailure(http.StatusTooManyRequests, "rate_limit_error",
		http.Header{"Retry-After": []string{"7"}}))

	_, err := p.Generate(context.Background(), gradeRequest())
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
	if rl.RetryAfter != 7*time.Second {
		t.Fatalf("RetryAfter = %s, want 7s", rl.RetryAfter)
	}
}

func TestAnthropicProvider_StatusMapping(t *testing.T) {
	tests := []struct {
		status      int
		errType     string
		rejected    bool
		unavailable bool
	}{
		{http.StatusUnauthorized, "authentication_error", true, false},
		{http.StatusBadRequest, "invalid_request_error", true, false},
		{http.StatusInternalServerError, "api_error", false, true},
		{529, "overloaded_error", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.errType, func(t *testing.T) {
			p := newTestAnthropicProvider(t, anthropicFailure(tt.status, tt.errType, nil))
			_, err := p.Generate(context.Background(), gradeRequest())

			var rejected *ErrRequestRejected
			var unavail *ErrProviderUnavailable
			if got := errors.As(err, &rejected); got != tt.rejected {
				t.Fatalf("rejected = %v for %T (%v)", got, err, err)
			}
			if got := errors.As(err, &unavail); got != tt.unavailable {
				t.Fatalf("unavailable = %v for %T (%v)", got, err, err)
			}
			if tt.rejected && rejected.Status != tt.status {
				t.Fatalf("status = %d, want %d", rejected.Status, tt.status)
			}
		})
	}
}

func TestAnthropicProvider_ModelID(t *testing.T) {
	p := &AnthropicProvider{model: "claude-sonnet-4-20250514"}
	if p.ModelID() != "claude-sonnet-4-20250514" {
		t.Fatalf("expected 'claude-sonnet-4-20250514', got %q", p.ModelID())
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, anthropicModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
