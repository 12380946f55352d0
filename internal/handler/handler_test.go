package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ljimenez/chat-service/internal/middleware"
	"github.com/ljimenez/chat-service/internal/models"
	"github.com/ljimenez/chat-service/internal/providers"
	"github.com/ljimenez/chat-service/internal/repository"
	"github.com/ljimenez/chat-service/internal/service"
	"github.com/ljimenez/chat-service/internal/token"
)

type fakeDispatcher struct {
	result *models.ChatResult
	err    error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, prompt string) (*models.ChatResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestServer(t *testing.T, dispatcher service.Dispatcher) *httptest.Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	tokens := token.NewService([]byte("test-secret"), time.Hour)
	svc := service.NewService(repository.NewMemoryStore(), tokens, dispatcher, nil, log)
	h := NewHandler(svc, log)

	r := mux.NewRouter()
	r.HandleFunc("/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/auth/face-login", h.FaceLogin).Methods("POST")
	r.HandleFunc("/health", h.Health).Methods("GET")
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(tokens))
	authRouter.HandleFunc("/auth/verify", h.Verify).Methods("POST")
	authRouter.HandleFunc("/auth/update-face", h.UpdateFace).Methods("POST")
	authRouter.HandleFunc("/chat", h.Chat).Methods("POST")
	authRouter.HandleFunc("/admin/users", h.ListUsers).Methods("GET")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body map[string]any, bearer string) (*http.Response, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func registerUser(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp, body := postJSON(t, srv.URL+"/auth/register", map[string]any{
		"username": "ana", "email": email, "password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tok, _ := body["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeDispatcher{})

	resp, body := postJSON(t, srv.URL+"/auth/register", map[string]any{
		"username": "ana", "email": "ana@example.com", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.NotContains(t, user, "password_hash", "hashes must never leave the server")

	// second registration with the same email fails
	resp, body = postJSON(t, srv.URL+"/auth/register", map[string]any{
		"username": "ana", "email": "ana@example.com", "password": "secret123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeDispatcher{})
	registerUser(t, srv, "ana@example.com")

	resp, body := postJSON(t, srv.URL+"/auth/login", map[string]any{
		"email": "ana@example.com", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, _ = postJSON(t, srv.URL+"/auth/login", map[string]any{
		"email": "ana@example.com", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = postJSON(t, srv.URL+"/auth/login", map[string]any{
		"email": "ana@example.com",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFaceLoginEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeDispatcher{})
	tok := registerUser(t, srv, "ana@example.com")

	resp, _ := postJSON(t, srv.URL+"/auth/update-face", map[string]any{
		"faceData": "descriptor",
	}, tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, srv.URL+"/auth/face-login", map[string]any{
		"email": "ana@example.com", "faceData": "descriptor",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, _ = postJSON(t, srv.URL+"/auth/face-login", map[string]any{
		"email": "ana@example.com", "faceData": "different",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVerifyEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeDispatcher{})
	tok := registerUser(t, srv, "ana@example.com")

	resp, body := postJSON(t, srv.URL+"/auth/verify", map[string]any{}, tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["valid"])

	resp, _ = postJSON(t, srv.URL+"/auth/verify", map[string]any{}, "garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeDispatcher{result: &models.ChatResult{Response: "hello there", ProviderName: "Gemini"}})
	tok := registerUser(t, srv, "ana@example.com")

	resp, body := postJSON(t, srv.URL+"/chat", map[string]any{"prompt": "hi"}, tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello there", body["response"])
	assert.Equal(t, "Gemini", body["providerName"])

	// missing token
	resp2, err := http.Post(srv.URL+"/chat", "application/json", bytes.NewReader([]byte(`{"prompt":"hi"}`)))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)

	// empty prompt
	resp, _ = postJSON(t, srv.URL+"/chat", map[string]any{"prompt": ""}, tok)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatEndpoint_AllProvidersDown(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeDispatcher{err: providers.ErrAllProvidersUnavailable})
	tok := registerUser(t, srv, "ana@example.com")

	resp, body := postJSON(t, srv.URL+"/chat", map[string]any{"prompt": "hi"}, tok)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
	assert.NotContains(t, body, "response", "no partial text on aggregate failure")
}

func TestAdminUsersEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeDispatcher{})
	tok := registerUser(t, srv, "ana@example.com")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/admin/users", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string][]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body["users"], 1)
	assert.NotContains(t, body["users"][0], "password_hash")
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeDispatcher{})
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
