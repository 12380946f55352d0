package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ljimenez/chat-service/internal/middleware"
	"github.com/ljimenez/chat-service/internal/providers"
	"github.com/ljimenez/chat-service/internal/service"
	"github.com/ljimenez/chat-service/internal/token"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FaceData string `json:"faceData"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type faceLoginRequest struct {
	Email    string `json:"email"`
	FaceData string `json:"faceData"`
}

type faceDataRequest struct {
	FaceData string `json:"faceData"`
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, tokenString, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password, req.FaceData)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]any{"token": tokenString, "user": user})
}

// Login handles password authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, tokenString, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"token": tokenString, "user": user})
}

// FaceLogin handles authentication by face-data hash comparison
func (h *Handler) FaceLogin(w http.ResponseWriter, r *http.Request) {
	var req faceLoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, tokenString, err := h.svc.FaceLogin(r.Context(), req.Email, req.FaceData)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"token": tokenString, "user": user})
}

// Verify confirms the bearer token and returns the user it asserts
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, token.ErrInvalidToken)
		return
	}
	user, err := h.svc.User(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"valid": true, "user": user})
}

// UpdateFace overwrites the authenticated user's stored face data
func (h *Handler) UpdateFace(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, token.ErrInvalidToken)
		return
	}
	var req faceDataRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.UpdateFaceData(r.Context(), userID, req.FaceData)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Chat forwards the prompt to the provider fallback chain
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.Chat(r.Context(), req.Prompt)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// ListUsers returns all users, newest first
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Health reports service and store health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Health(r.Context()); err != nil {
		h.log.Errorf("Health check failed: %v", err)
		h.respondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "database": "unreachable"})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "database": "reachable"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status, message := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, service.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUserExists), errors.Is(err, service.ErrNoFaceData):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrFaceMismatch),
		errors.Is(err, token.ErrInvalidToken):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, providers.ErrAllProvidersUnavailable):
		status, message = http.StatusInternalServerError, err.Error()
	default:
		h.log.Errorf("Request failed: %v", err)
	}
	h.respondJSON(w, status, map[string]any{"error": message})
}
