package service

import (
	"context"
	"fmt"

	"github.com/ljimenez/chat-service/internal/models"
)

// Chat forwards the prompt through the provider fallback chain.
func (s *Service) Chat(ctx context.Context, prompt string) (*models.ChatResult, error) {
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrValidation)
	}
	return s.dispatcher.Dispatch(ctx, prompt)
}

// Health reports whether the backing store is reachable.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}
