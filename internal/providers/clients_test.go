package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClient_Generate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hola"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "test-key", time.Second, testLogger())
	assert.True(t, c.Configured())

	text, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hola", text)
}

func TestGeminiClient_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "test-key", time.Second, testLogger())
	_, err := c.Generate(context.Background(), "hi")
	require.Error(t, err)
}

func TestHuggingFaceClient_Generate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"generated_text":"output"}]`))
	}))
	defer srv.Close()

	c := NewHuggingFaceClient(srv.URL, "hf-key", time.Second, testLogger())
	text, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "output", text)
}

func TestOpenAIClient_Generate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer oa-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"answer"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "oa-key", time.Second, testLogger())
	text, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "answer", text)
}

func TestClients_Unconfigured(t *testing.T) {
	t.Parallel()

	log := testLogger()
	assert.False(t, NewGeminiClient("http://x", "", time.Second, log).Configured())
	assert.False(t, NewHuggingFaceClient("http://x", "", time.Second, log).Configured())
	assert.False(t, NewOpenAIClient("http://x", "", time.Second, log).Configured())
}

func TestClients_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "oa-key", time.Minute, testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, "hi")
	require.Error(t, err, "a hung provider must not block past the call deadline")
}
