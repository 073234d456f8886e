package auth

import (
	"context"
	"fmt"

	"perch/model"
	"perch/repository"
	"perch/session"
)

// Serializer converts an authenticated identity to and from a session token.
// Only the user id goes into the session store; the full user is rehydrated
// from the database on every request so it is never stale.
type Serializer struct {
	sessions session.Store
	users    repository.UserRepository
}

// NewSerializer creates a Serializer.
func NewSerializer(sessions session.Store, users repository.UserRepository) *Serializer {
	return &Serializer{sessions: sessions, users: users}
}

// Establish opens a session for the user and returns its token.
func (s *Serializer) Establish(ctx context.Context, user *model.User) (string, error) {
	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to establish session: %w", err)
	}
	return token, nil
}

// Resolve rehydrates the user behind a session token. It returns (nil, nil)
// when the token maps to no session or the user no longer exists; both mean
// "not authenticated", not a request failure.
func (s *Serializer) Resolve(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if err == session.ErrNoSession {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to rehydrate session user: %w", err)
	}
	// user == nil: deleted mid-session, treated as unauthenticated.
	return user, nil
}

// Drop destroys the session behind a token.
func (s *Serializer) Drop(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}
