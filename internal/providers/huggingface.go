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

// HuggingFaceClient calls the Hugging Face inference API
type HuggingFaceClient struct {
	url    string
	apiKey string
	client *http.Client
	log    *logrus.Logger
}

// NewHuggingFaceClient initializes a new Hugging Face client
func NewHuggingFaceClient(url, apiKey string, timeout time.Duration, log *logrus.Logger) *HuggingFaceClient {
	return &HuggingFaceClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Name returns the provider name reported in chat results
func (c *HuggingFaceClient) Name() string { return "HuggingFace" }

// Configured reports whether an API key is present
func (c *HuggingFaceClient) Configured() bool { return c.apiKey != "" }

// KeyEnv names the environment variable that configures this provider
func (c *HuggingFaceClient) KeyEnv() string { return "HUGGINGFACE_API_KEY" }

type huggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingFaceParameters `json:"parameters"`
}

type huggingFaceParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
}

type huggingFaceResponse []struct {
	GeneratedText string `json:"generated_text"`
}

// Generate sends the prompt to the inference API and returns the generated text
func (c *HuggingFaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload := huggingFaceRequest{
		Inputs: prompt,
		Parameters: huggingFaceParameters{
			MaxNewTokens: 300,
			Temperature:  0.7,
		},
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
		c.log.Debugf("Hugging Face error response: %s", raw)
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return c.parseResponse(raw)
}

func (c *HuggingFaceClient) parseResponse(raw []byte) (string, error) {
	var parsed huggingFaceResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed) == 0 || parsed[0].GeneratedText == "" {
		return "", fmt.Errorf("no generated text in response")
	}
	return parsed[0].GeneratedText, nil
}
