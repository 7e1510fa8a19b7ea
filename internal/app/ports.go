package app

import (
	"context"

	"rizz-social/internal/model"
	"rizz-social/internal/repository"
	"rizz-social/internal/storage"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
}

type PostStore interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id uint) (*model.Post, error)
	List(ctx context.Context, page repository.PageOptions) ([]model.Post, error)
	ListByUserID(ctx context.Context, userID uint) ([]model.Post, error)
	UpdateByIDAndUserID(ctx context.Context, id, userID uint, content string, imageURL *string) (bool, error)
	DeleteByIDAndUserID(ctx context.Context, id, userID uint) (bool, error)
}

type ImageStore interface {
	Save(ctx context.Context, upload storage.Upload) (string, error)
	Delete(ctx context.Context, ref string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.ContentEvent) error
}

type LoginGuard interface {
	Allow(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
