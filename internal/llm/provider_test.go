package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_ServesInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"score":100}`), Usage: Usage{InputTokens: 12, OutputTokens: 4, TotalTokens: 16}},
		MockText("Great work on the mean."),
	)

	first, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "grade 1"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Text() != `{"score":100}` || first.Usage.InputTokens != 12 || first.StopReason != "end" {
		t.Fatalf("unexpected first response: %+v", first)
	}

	second, err := mock.Generate(context.Background(), Request{System: "tutor"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Text() != "Great work on the mean." {
		t.Fatalf("unexpected text %q", second.Text())
	}
	if got := mock.LastCall().System; got != "tutor" {
		t.Fatalf("LastCall().System = %q", got)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestMockProvider_Errors(t *testing.T) {
	t.Run("empty queue", func(t *testing.T) {
		_, err := NewMockProvider().Generate(context.Background(), Request{})
		var unavail *ErrProviderUnavailable
		if !errors.As(err, &unavail) {
			t.Fatalf("expected ErrProviderUnavailable, got %T", err)
		}
	})

	t.Run("configured error", func(t *testing.T) {
		mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})
		_, err := mock.Generate(context.Background(), Request{})
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("expected ErrRateLimit, got %T", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		mock := NewMockProvider(MockText("unused"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		mock.AddResponse(MockText("later"))
		resp, err := mock.Generate(context.Background(), Request{})
		if err != nil || resp.Text() != "unused" {
			t.Fatalf("queue should be untouched by a cancelled call: %v %v", resp, err)
		}
	})
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected unknown, got %q", p)
	}
	ctx = WithPurpose(ctx, PurposeGrading)
	if p := PurposeFrom(ctx); p != "answer-grading" {
		t.Fatalf("expected answer-grading, got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "k"}}, false},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "bard"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("STATLAB_LLM_PROVIDER", "openai")
	t.Setenv("STATLAB_OPENAI_API_KEY", "sk-env")
	t.Setenv("STATLAB_OPENAI_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("STATLAB_LLM_TIMEOUT", "45s")

	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.OpenAI.BaseURL != "http://localhost:8080/v1" {
		t.Fatalf("BaseURL = %q", cfg.OpenAI.BaseURL)
	}
	if cfg.Timeout.Seconds() != 45 {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENROUTER_API_KEY", "sk-or")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != ProviderAnthropic || cfg.Anthropic.APIKey != "sk-ant" {
		t.Fatalf("unexpected discovery: %+v ok=%v", cfg, ok)
	}
}
