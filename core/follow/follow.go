// Package follow maintains the directed follow graph between users.
package follow

import (
	"context"
	"errors"
	"fmt"

	"perch/logger"
	"perch/repository"
)

// Expected follow failures. Handlers map these to 404/400; anything else is
// a server error.
var (
	// ErrNotFound means the actor or the target does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidTarget means the actor tried to follow itself.
	ErrInvalidTarget = errors.New("cannot follow yourself")
)

// Service establishes and removes follow edges. The actor id always comes
// from the authenticated session, never from the request body.
type Service struct {
	users repository.UserRepository
}

// NewService creates a Service.
func NewService(users repository.UserRepository) *Service {
	return &Service{users: users}
}

// Follow adds the directed edge actor -> target. Adding an edge that already
// exists is a no-op success. A target that references no user yields
// ErrNotFound; so does a vanished actor (deleted mid-session).
func (s *Service) Follow(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return ErrInvalidTarget
	}

	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to resolve follow actor: %w", err)
	}
	if actor == nil {
		return ErrNotFound
	}

	err = s.users.AddFollowing(ctx, actorID, targetID)
	switch {
	case err == nil:
		logger.Info("follow edge added", logger.Int64("followerId", actorID), logger.Int64("followingId", targetID))
		return nil
	case errors.Is(err, repository.ErrDuplicateEdge):
		// Already following; converges to the same state.
		return nil
	case errors.Is(err, repository.ErrNoSuchUser):
		return ErrNotFound
	default:
		return fmt.Errorf("failed to add follow edge: %w", err)
	}
}

// Unfollow removes the directed edge actor -> target. Removing an absent
// edge is a no-op success.
func (s *Service) Unfollow(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return ErrInvalidTarget
	}

	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to resolve unfollow actor: %w", err)
	}
	if actor == nil {
		return ErrNotFound
	}

	if err := s.users.RemoveFollowing(ctx, actorID, targetID); err != nil {
		return fmt.Errorf("failed to remove follow edge: %w", err)
	}
	logger.Info("follow edge removed", logger.Int64("followerId", actorID), logger.Int64("followingId", targetID))
	return nil
}
