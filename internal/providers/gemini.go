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

// GeminiClient calls the Google Gemini generateContent API
type GeminiClient struct {
	url    string
	apiKey string
	client *http.Client
	log    *logrus.Logger
}

// NewGeminiClient initializes a new Gemini client
func NewGeminiClient(url, apiKey string, timeout time.Duration, log *logrus.Logger) *GeminiClient {
	return &GeminiClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Name returns the provider name reported in chat results
func (c *GeminiClient) Name() string { return "Gemini" }

// Configured reports whether an API key is present
func (c *GeminiClient) Configured() bool { return c.apiKey != "" }

// KeyEnv names the environment variable that configures this provider
func (c *GeminiClient) KeyEnv() string { return "GOOGLE_API_KEY" }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt to Gemini and returns the generated text
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
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
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()

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
		c.log.Debugf("Gemini error response: %s", raw)
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return c.parseResponse(raw)
}

func (c *GeminiClient) parseResponse(raw []byte) (string, error) {
	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
