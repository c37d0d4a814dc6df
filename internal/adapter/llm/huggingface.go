package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const huggingFaceBaseURL = "https://api-inference.huggingface.co/models"

// HuggingFaceClient calls the text-generation inference API.
type HuggingFaceClient struct {
	baseURL   string
	token     string
	model     string
	maxTokens int
	client    *http.Client
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int  `json:"max_new_tokens"`
	ReturnFullText bool `json:"return_full_text"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func NewHuggingFaceClient(baseURL, token, model string, maxTokens int, timeout time.Duration) *HuggingFaceClient {
	if baseURL == "" {
		baseURL = huggingFaceBaseURL
	}
	return &HuggingFaceClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *HuggingFaceClient) Complete(ctx context.Context, prompt string) (string, error) {
	jsonData, err := json.Marshal(hfRequest{
		Inputs:     prompt,
		Parameters: hfParameters{MaxNewTokens: c.maxTokens},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.model, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	// 503 is returned while the model is loading.
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("huggingface status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var generations []hfGeneration
	if err := json.Unmarshal(body, &generations); err != nil {
		var single hfGeneration
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			return "", fmt.Errorf("failed to parse response (body: %s): %w", truncate(string(body), 200), err)
		}
		generations = []hfGeneration{single}
	}
	if len(generations) == 0 {
		return "", fmt.Errorf("empty response from huggingface")
	}
	return generations[0].GeneratedText, nil
}

func (c *HuggingFaceClient) ModelName() string {
	return c.model
}
