package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// OpenAIClient calls the OpenAI chat completions API
type OpenAIClient struct {
	url    string
	apiKey string
	client *http.Client
	log    *logrus.Logger
}

// NewOpenAIClient initializes a new OpenAI client
func NewOpenAIClient(url, apiKey string, timeout time.Duration, log *logrus.Logger) *OpenAIClient {
	return &OpenAIClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Name returns the provider name reported in chat results
func (c *OpenAIClient) Name() string { return "OpenAI" }

// Configured reports whether an API key is present
func (c *OpenAIClient) Configured() bool { return c.apiKey != "" }

// KeyEnv names the environment variable that configures this provider
func (c *OpenAIClient) KeyEnv() string { return "OPENAI_API_KEY" }

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt as a single-message chat completion
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload := openAIRequest{
		Model:     "gpt-4o",
		Messages:  []openAIMessage{{Role: "user", Content: prompt}},
		MaxTokens: 300,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Debugf("OpenAI error response: %s", raw)
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return c.parseResponse(raw)
}

func (c *OpenAIClient) parseResponse(raw []byte) (string, error) {
	var parsed openAIResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}
