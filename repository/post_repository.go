package repository

import (
	"context"
	"fmt"

	"perch/model"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post, hashtags []string) error
	Latest(ctx context.Context, limit int) ([]model.Post, error)
}

// gormPostRepository implements PostRepository on GORM/MySQL.
type gormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new gormPostRepository.
func NewGormPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

// Create stores a post and associates it with its hashtags, creating tags
// that do not exist yet. The whole write runs in one transaction.
func (r *gormPostRepository) Create(ctx context.Context, post *model.Post, hashtags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for _, title := range hashtags {
			tag := &model.Hashtag{}
			if err := tx.Where(model.Hashtag{Title: title}).FirstOrCreate(tag).Error; err != nil {
				return err
			}
			if err := tx.Model(post).Association("Hashtags").Append(tag); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// Latest returns the newest posts with their authors preloaded.
func (r *gormPostRepository) Latest(ctx context.Context, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}
