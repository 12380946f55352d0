package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ljimenez/chat-service/internal/models"
	"github.com/ljimenez/chat-service/internal/repository"
)

const minPasswordLength = 6

// Register creates a new user with hashed credentials and issues a token.
// The optional faceData is hashed and stored so the user can later log in
// with the face flow.
func (s *Service) Register(ctx context.Context, username, email, password, faceData string) (*models.User, string, error) {
	if username == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return nil, "", ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := hashSecret(password)
	if err != nil {
		return nil, "", err
	}

	var faceHash string
	if faceData != "" {
		if faceHash, err = hashFaceData(faceData); err != nil {
			return nil, "", err
		}
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		FaceDataHash: faceHash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}

	tokenString, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(user.Email, user.Username); err != nil {
			s.log.Warnf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, tokenString, nil
}

// Login authenticates a user by password and issues a token. Unknown email
// and wrong password return the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !verifySecret(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	tokenString, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return user, tokenString, nil
}

// FaceLogin authenticates a user by comparing face-data hashes. This is a
// hash-equality simulation, not biometric similarity matching.
func (s *Service) FaceLogin(ctx context.Context, email, faceData string) (*models.User, string, error) {
	if email == "" || faceData == "" {
		return nil, "", fmt.Errorf("%w: email and face data are required", ErrValidation)
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}
	if user.FaceDataHash == "" {
		return nil, "", ErrNoFaceData
	}
	if !verifyFaceData(faceData, user.FaceDataHash) {
		return nil, "", ErrFaceMismatch
	}

	tokenString, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User logged in via face auth: %s", user.Email)
	return user, tokenString, nil
}

// VerifyToken validates a token and loads the user it asserts.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	userID, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return s.User(ctx, userID)
}

// User loads a user by id.
func (s *Service) User(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateFaceData hashes and overwrites the user's stored face data.
func (s *Service) UpdateFaceData(ctx context.Context, userID, faceData string) (*models.User, error) {
	if faceData == "" {
		return nil, fmt.Errorf("%w: face data is required", ErrValidation)
	}
	faceHash, err := hashFaceData(faceData)
	if err != nil {
		return nil, err
	}
	user, err := s.store.UpdateFaceData(ctx, userID, faceHash)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Face data updated for user %s", userID)
	return user, nil
}

// ListUsers returns all users, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}
