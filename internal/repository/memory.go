package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ljimenez/chat-service/internal/models"
)

type memoryUser struct {
	user *models.User
	seq  int64
}

// MemoryStore keeps users in memory, keyed by email. Intended for
// development and tests; nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*memoryUser
	seq   int64
}

// NewMemoryStore initializes an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*memoryUser)}
}

// CreateUser inserts a new user, assigning an id and creation time
func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return ErrDuplicateEmail
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	s.seq++
	stored := *user
	s.users[user.Email] = &memoryUser{user: &stored, seq: s.seq}
	return nil
}

// FindUserByEmail retrieves a user by email
func (s *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := *entry.user
	return &user, nil
}

// FindUserByID retrieves a user by id
func (s *MemoryStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.users {
		if entry.user.ID == id {
			user := *entry.user
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// ListUsers returns all users, newest first
func (s *MemoryStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*memoryUser, 0, len(s.users))
	for _, entry := range s.users {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq > entries[j].seq
	})
	users := make([]*models.User, len(entries))
	for i, entry := range entries {
		user := *entry.user
		users[i] = &user
	}
	return users, nil
}

// UpdateFaceData overwrites the stored face-data hash for the user
func (s *MemoryStore) UpdateFaceData(ctx context.Context, userID, faceDataHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.users {
		if entry.user.ID == userID {
			entry.user.FaceDataHash = faceDataHash
			user := *entry.user
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// Ping always succeeds for the in-memory backend
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
