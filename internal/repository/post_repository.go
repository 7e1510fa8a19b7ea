package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"rizz-social/internal/model"
)

type PostRepository struct {
	db *gorm.DB
}

// PageOptions with Limit <= 0 returns every row.
type PageOptions struct {
	Limit  int
	Offset int
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) withOwner(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Post{}).
		Select("posts.*, users.username AS username, users.profile_picture AS profile_picture").
		Joins("JOIN users ON users.id = posts.user_id")
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Omit("Owner").Create(post).Error; err != nil {
		return fmt.Errorf("create post failed: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	if err := r.withOwner(ctx).Where("posts.id = ?", id).Take(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query post by id failed: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) List(ctx context.Context, page PageOptions) ([]model.Post, error) {
	posts := make([]model.Post, 0)
	query := r.withOwner(ctx).Order("posts.created_at DESC").Order("posts.id DESC")
	if page.Limit > 0 {
		query = query.Limit(page.Limit).Offset(page.Offset)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts failed: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Post, error) {
	posts := make([]model.Post, 0)
	err := r.withOwner(ctx).
		Where("posts.user_id = ?", userID).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts by user failed: %w", err)
	}
	return posts, nil
}

// UpdateByIDAndUserID reports false when no row matched both keys.
func (r *PostRepository) UpdateByIDAndUserID(ctx context.Context, id, userID uint, content string, imageURL *string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"content":   content,
			"image_url": imageURL,
		})
	if result.Error != nil {
		return false, fmt.Errorf("update post failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteByIDAndUserID reports false when no row matched both keys.
func (r *PostRepository) DeleteByIDAndUserID(ctx context.Context, id, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Post{})
	if result.Error != nil {
		return false, fmt.Errorf("delete post failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
