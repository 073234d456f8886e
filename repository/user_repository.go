package repository

import (
	"context"
	"errors"
	"fmt"

	"perch/model"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations, including
// the self-referential follow associations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindBySNS(ctx context.Context, provider, snsID string) (*model.User, error)

	AddFollowing(ctx context.Context, followerID, followingID int64) error
	RemoveFollowing(ctx context.Context, followerID, followingID int64) error
	FollowerCount(ctx context.Context, userID int64) (int64, error)
	FollowingCount(ctx context.Context, userID int64) (int64, error)
	FollowingIDs(ctx context.Context, userID int64) ([]int64, error)
}

// gormUserRepository implements UserRepository on GORM/MySQL.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new gormUserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create adds a new user. A collision with the unique email or
// (provider, sns_id) index is reported as ErrDuplicateUser.
func (r *gormUserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if mysqlErrNumber(err) == mysqlErrDuplicateEntry || errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by id. Returns (nil, nil) when not found.
func (r *gormUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	err := r.db.WithContext(ctx).First(user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by id %d: %w", id, err)
	}
	return user, nil
}

// FindByEmail retrieves a user by email. Returns (nil, nil) when not found.
func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.db.WithContext(ctx).First(user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by email %s: %w", email, err)
	}
	return user, nil
}

// FindBySNS retrieves a user by provider and external id. Returns (nil, nil)
// when not found.
func (r *gormUserRepository) FindBySNS(ctx context.Context, provider, snsID string) (*model.User, error) {
	user := &model.User{}
	err := r.db.WithContext(ctx).First(user, "provider = ? AND sns_id = ?", provider, snsID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by sns id %s/%s: %w", provider, snsID, err)
	}
	return user, nil
}

// AddFollowing inserts the directed edge follower -> following. An existing
// edge is reported as ErrDuplicateEdge; a following id that references no
// user is reported as ErrNoSuchUser.
func (r *gormUserRepository) AddFollowing(ctx context.Context, followerID, followingID int64) error {
	edge := &model.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		switch mysqlErrNumber(err) {
		case mysqlErrDuplicateEntry:
			return ErrDuplicateEdge
		case mysqlErrNoReferencedRow:
			return ErrNoSuchUser
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEdge
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrNoSuchUser
		}
		return fmt.Errorf("failed to add following %d -> %d: %w", followerID, followingID, err)
	}
	return nil
}

// RemoveFollowing deletes the directed edge follower -> following. Deleting
// an absent edge is not an error.
func (r *gormUserRepository) RemoveFollowing(ctx context.Context, followerID, followingID int64) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove following %d -> %d: %w", followerID, followingID, err)
	}
	return nil
}

// FollowerCount counts edges pointing at the user.
func (r *gormUserRepository) FollowerCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("following_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count followers of %d: %w", userID, err)
	}
	return count, nil
}

// FollowingCount counts edges originating from the user.
func (r *gormUserRepository) FollowingCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count followings of %d: %w", userID, err)
	}
	return count, nil
}

// FollowingIDs lists the ids the user follows.
func (r *gormUserRepository) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list followings of %d: %w", userID, err)
	}
	return ids, nil
}
