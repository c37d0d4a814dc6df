package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"docai/internal/domain"
)

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(domain.GenerationRequest{
		Language: domain.LanguagePython,
		Source:   "def f():\n    pass",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(prompt, "Add a detailed doc comment to the following python method:\ndef f():\n    pass\n") {
		t.Errorf("unexpected prompt start: %q", prompt)
	}
	if strings.Contains(prompt, "inline comments") {
		t.Error("inline sentence should be absent")
	}
	if strings.Contains(prompt, "type signatures") {
		t.Error("signature sentence is only for haskell")
	}
	if !strings.HasSuffix(prompt, "Don't include any explanations in your response.") {
		t.Errorf("unexpected prompt end: %q", prompt)
	}
}

func TestBuildPromptInlineAndHaskell(t *testing.T) {
	prompt, err := BuildPrompt(domain.GenerationRequest{
		Language: domain.LanguageHaskell,
		Source:   "f x = x",
		Inline:   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt, "Add inline comments to the method body where it makes sense.") {
		t.Error("expected inline sentence")
	}
	if !strings.Contains(prompt, "explanations and missing type signatures in your response") {
		t.Errorf("expected signature sentence, got %q", prompt)
	}
}

func TestExtractCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"fenced", "Here you go:\n```python\ndef f():\n    \"\"\"doc\"\"\"\n    pass\n```\nDone.", "def f():\n    \"\"\"doc\"\"\"\n    pass"},
		{"no info string", "```\nint x;\n```", "int x;"},
		{"first block wins", "```go\nfunc a() {}\n```\n\n```go\nfunc b() {}\n```", "func a() {}"},
		{"no fence", "  def f(): pass \n", "def f(): pass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCodeBlock(tt.response); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestChatClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer token")
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "m" || len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("unexpected request %+v", req)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"world"}}]}`))
	}))
	defer server.Close()

	c := NewChatClient(server.URL, "key", "m", 100, 0, 5*time.Second)
	out, err := c.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if out != "world" {
		t.Errorf("expected 'world', got '%s'", out)
	}
}

func TestHuggingFaceClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/codellama/CodeLlama-7b-hf" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req hfRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Parameters.MaxNewTokens != 1024 {
			t.Errorf("expected max_new_tokens 1024, got %d", req.Parameters.MaxNewTokens)
		}
		w.Write([]byte(`[{"generated_text":"` + "```py\\nx\\n```" + `"}]`))
	}))
	defer server.Close()

	c := NewHuggingFaceClient(server.URL, "", "codellama/CodeLlama-7b-hf", 1024, 5*time.Second)
	out, err := c.Complete(context.Background(), "p")
	if err != nil {
		t.Fatal(err)
	}
	if ExtractCodeBlock(out) != "x" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestAnthropicClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "k" || r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic headers")
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer server.Close()

	c := NewAnthropicClient(server.URL, "k", "claude", 512, 5*time.Second)
	out, err := c.Complete(context.Background(), "p")
	if err != nil {
		t.Fatal(err)
	}
	if out != "ok" {
		t.Errorf("expected 'ok', got '%s'", out)
	}
}

func TestServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	}))
	defer server.Close()

	c := NewChatClient(server.URL, "", "m", 0, 0, 5*time.Second)
	_, err := c.Complete(context.Background(), "p")
	if !IsRetryable(err) {
		t.Errorf("expected retryable error, got %v", err)
	}
}

type flakyGenerator struct {
	failures int32
	calls    int32
	err      error
}

func (g *flakyGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	n := atomic.AddInt32(&g.calls, 1)
	if n <= g.failures {
		return "", g.err
	}
	return "done", nil
}

func (g *flakyGenerator) ModelName() string { return "flaky" }

func TestRetryGeneratorRecovers(t *testing.T) {
	next := &flakyGenerator{failures: 2, err: &RetryableError{StatusCode: 429}}
	g := NewRetryGenerator(next, 3, time.Millisecond)

	out, err := g.Generate(context.Background(), domain.GenerationRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if out != "done" || next.calls != 3 {
		t.Errorf("expected success on third call, got %q after %d calls", out, next.calls)
	}
}

func TestRetryGeneratorStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad request")
	next := &flakyGenerator{failures: 5, err: permanent}
	g := NewRetryGenerator(next, 3, time.Millisecond)

	_, err := g.Generate(context.Background(), domain.GenerationRequest{})
	if !errors.Is(err, permanent) {
		t.Errorf("expected permanent error, got %v", err)
	}
	if next.calls != 1 {
		t.Errorf("expected 1 call, got %d", next.calls)
	}
}

func TestRetryGeneratorGivesUp(t *testing.T) {
	next := &flakyGenerator{failures: 10, err: &RetryableError{StatusCode: 500}}
	g := NewRetryGenerator(next, 2, time.Millisecond)

	_, err := g.Generate(context.Background(), domain.GenerationRequest{})
	if !IsRetryable(err) {
		t.Errorf("expected wrapped retryable error, got %v", err)
	}
	if next.calls != 3 {
		t.Errorf("expected 3 calls, got %d", next.calls)
	}
}

func TestBackoffCapped(t *testing.T) {
	for attempt := 0; attempt < 40; attempt++ {
		d := Backoff(attempt, time.Second, 30*time.Second)
		if d < time.Second || d > 45*time.Second {
			t.Errorf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}

func TestPromptGeneratorExtractsCode(t *testing.T) {
	c := completerFunc(func(ctx context.Context, prompt string) (string, error) {
		return "```python\ndef f():\n    \"\"\"doc\"\"\"\n    pass\n```", nil
	})
	g := NewPromptGenerator(c)
	out, err := g.Generate(context.Background(), domain.GenerationRequest{Language: domain.LanguagePython, Source: "def f():\n    pass"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "def f():\n    \"\"\"doc\"\"\"\n    pass" {
		t.Errorf("unexpected output %q", out)
	}
}

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func (f completerFunc) ModelName() string { return "func" }

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(Settings{Provider: "nope"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := New(Settings{Provider: "openai"}); err == nil {
		t.Error("expected error when API key is missing")
	}
}

func TestNewHuggingFaceWithoutToken(t *testing.T) {
	t.Setenv("HF_TOKEN", "")
	g, err := New(Settings{Provider: "huggingface"})
	if err != nil {
		t.Fatal(err)
	}
	if g.ModelName() != "codellama/CodeLlama-7b-hf" {
		t.Errorf("unexpected default model %s", g.ModelName())
	}
}

func TestMockGenerator(t *testing.T) {
	g := NewMockGenerator()
	out, _ := g.Generate(context.Background(), domain.GenerationRequest{
		Language: domain.LanguagePython,
		Source:   "def f():\n    pass",
	})
	if out != "def f():\n    \"\"\"Documented by docai.\"\"\"\n    pass" {
		t.Errorf("unexpected python mock output %q", out)
	}

	out, _ = g.Generate(context.Background(), domain.GenerationRequest{
		Language: domain.LanguageGo,
		Source:   "func f() {}",
	})
	if out != "// Documented by docai.\nfunc f() {}" {
		t.Errorf("unexpected go mock output %q", out)
	}
}
