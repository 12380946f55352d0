// Package service implements the auth flows and chat orchestration on top
// of an injected user store, token service, and provider dispatcher.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ljimenez/chat-service/internal/models"
	"github.com/ljimenez/chat-service/internal/repository"
	"github.com/ljimenez/chat-service/internal/token"
)

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering an already-registered email.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned by face login for an unknown email.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoFaceData is returned when the user never registered face data.
	ErrNoFaceData = errors.New("no face data registered")
	// ErrFaceMismatch is returned when the presented face data does not match.
	ErrFaceMismatch = errors.New("face data does not match")
)

// Mailer sends transactional mail. Implementations must be safe to skip:
// a nil Mailer disables mail entirely.
type Mailer interface {
	SendWelcome(to, username string) error
}

// Dispatcher forwards a prompt to the provider fallback chain.
type Dispatcher interface {
	Dispatch(ctx context.Context, prompt string) (*models.ChatResult, error)
}

// Service handles business logic
type Service struct {
	store      repository.UserStore
	tokens     *token.Service
	dispatcher Dispatcher
	mailer     Mailer
	log        *logrus.Logger
}

// NewService initializes a new service. mailer may be nil.
func NewService(store repository.UserStore, tokens *token.Service, dispatcher Dispatcher, mailer Mailer, log *logrus.Logger) *Service {
	return &Service{store: store, tokens: tokens, dispatcher: dispatcher, mailer: mailer, log: log}
}

func hashSecret(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

// hashFaceData digests the captured face data before bcrypt: descriptors
// are arbitrarily large and bcrypt rejects inputs over 72 bytes.
func hashFaceData(faceData string) (string, error) {
	digest := sha256.Sum256([]byte(faceData))
	return hashSecret(hex.EncodeToString(digest[:]))
}

func verifySecret(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func verifyFaceData(faceData, hash string) bool {
	digest := sha256.Sum256([]byte(faceData))
	return verifySecret(hex.EncodeToString(digest[:]), hash)
}
