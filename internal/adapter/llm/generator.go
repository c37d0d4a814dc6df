package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"docai/internal/domain"
	"docai/internal/port"
)

// PromptGenerator renders the prompt for a unit, sends it to a Completer and
// extracts the code block from the reply.
type PromptGenerator struct {
	completer port.Completer
}

func NewPromptGenerator(c port.Completer) *PromptGenerator {
	return &PromptGenerator{completer: c}
}

func (g *PromptGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return "", err
	}
	reply, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	code := ExtractCodeBlock(reply)
	if code == "" {
		return "", fmt.Errorf("model %s returned an empty response", g.completer.ModelName())
	}
	return code, nil
}

func (g *PromptGenerator) ModelName() string {
	return g.completer.ModelName()
}

// Settings selects and configures a generation backend.
type Settings struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	APIKeyEnv   string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

type providerDefaults struct {
	baseURL   string
	keyEnvVar string
	model     string
}

var providers = map[string]providerDefaults{
	"huggingface": {huggingFaceBaseURL, "HF_TOKEN", "codellama/CodeLlama-7b-hf"},
	"openai":      {"https://api.openai.com/v1", "OPENAI_API_KEY", "gpt-4o-mini"},
	"deepseek":    {"https://api.deepseek.com/v1", "DEEPSEEK_API_KEY", "deepseek-coder"},
	"ollama":      {"http://localhost:11434/v1", "", "codellama"},
	"anthropic":   {anthropicBaseURL, "ANTHROPIC_API_KEY", "claude-3-5-haiku-latest"},
	"mock":        {"", "", "mock"},
}

// Providers lists the known backend names.
func Providers() []string {
	return []string{"huggingface", "openai", "deepseek", "ollama", "anthropic", "mock"}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	return providers[provider].model
}

// New builds the generator for s.Provider wrapped in retries.
func New(s Settings) (port.Generator, error) {
	p, ok := providers[s.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s (use one of %s)", s.Provider, strings.Join(Providers(), ", "))
	}
	if s.Provider == "mock" {
		return NewMockGenerator(), nil
	}

	model := s.Model
	if model == "" {
		model = p.model
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = p.baseURL
	}
	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	apiKey := s.APIKey
	keyEnv := s.APIKeyEnv
	if keyEnv == "" {
		keyEnv = p.keyEnvVar
	}
	if apiKey == "" && keyEnv != "" {
		apiKey = os.Getenv(keyEnv)
		// huggingface serves public models without a token, at a lower rate limit
		if apiKey == "" && s.Provider != "huggingface" {
			return nil, fmt.Errorf("API key not found. Set %s environment variable", keyEnv)
		}
	}

	var completer port.Completer
	switch s.Provider {
	case "huggingface":
		completer = NewHuggingFaceClient(baseURL, apiKey, model, maxTokens, timeout)
	case "anthropic":
		completer = NewAnthropicClient(baseURL, apiKey, model, maxTokens, timeout)
	default:
		completer = NewChatClient(strings.TrimRight(baseURL, "/"), apiKey, model, maxTokens, s.Temperature, timeout)
	}

	return NewRetryGenerator(NewPromptGenerator(completer), s.MaxRetries, time.Second), nil
}
