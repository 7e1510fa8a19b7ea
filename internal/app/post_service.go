package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"rizz-social/internal/model"
	"rizz-social/internal/repository"
	"rizz-social/internal/storage"
)

const maxPageSize = 100

type PostService struct {
	postRepo PostStore
	userRepo UserStore
	media    media
}

type CreatePostInput struct {
	UserID  uint
	Content string
	Image   *storage.Upload
}

// UpdatePostInput leaves the stored text untouched when Content is nil or
// blank, and the stored image untouched when Image is nil.
type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Content *string
	Image   *storage.Upload
}

type ListPostsInput struct {
	Limit  int
	Offset int
}

func NewPostService(postRepo PostStore, userRepo UserStore, images ImageStore, publisher EventPublisher) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		media:    media{images: images, publisher: publisher},
	}
}

func normalizeContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", ErrContentRequired
	}
	if utf8.RuneCountInString(content) > model.MaxPostContentLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*model.Post, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	content, err := normalizeContent(input.Content)
	if err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	imageURL, err := s.media.saveImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:   input.UserID,
		Content:  content,
		ImageURL: imageURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		s.media.discardImage(ctx, imageURL)
		return nil, err
	}

	s.media.publish(ctx, model.ContentEvent{
		Type:     model.EventPostCreated,
		PostID:   post.ID,
		UserID:   post.UserID,
		ImageURL: deref(imageURL),
	})
	return s.reload(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*model.Post, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// ListPosts returns newest first. A zero Limit returns every post and then
// Offset must be zero too.
func (s *PostService) ListPosts(ctx context.Context, input ListPostsInput) ([]model.Post, error) {
	if input.Limit < 0 || input.Limit > maxPageSize || input.Offset < 0 {
		return nil, ErrInvalidInput
	}
	if input.Limit == 0 && input.Offset > 0 {
		return nil, fmt.Errorf("%w: offset requires limit", ErrInvalidInput)
	}
	return s.postRepo.List(ctx, repository.PageOptions{Limit: input.Limit, Offset: input.Offset})
}

func (s *PostService) ListPostsByUser(ctx context.Context, userID uint) ([]model.Post, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.postRepo.ListByUserID(ctx, userID)
}

func (s *PostService) UpdatePost(ctx context.Context, input UpdatePostInput) (*model.Post, error) {
	if input.UserID == 0 || input.PostID == 0 {
		return nil, ErrInvalidInput
	}

	existing, err := s.authorize(ctx, input.UserID, input.PostID)
	if err != nil {
		return nil, err
	}

	content := existing.Content
	if input.Content != nil && strings.TrimSpace(*input.Content) != "" {
		content, err = normalizeContent(*input.Content)
		if err != nil {
			return nil, err
		}
	}

	imageURL := existing.ImageURL
	if input.Image != nil {
		imageURL, err = s.media.saveImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.postRepo.UpdateByIDAndUserID(ctx, input.PostID, input.UserID, content, imageURL)
	if err != nil || !updated {
		if input.Image != nil {
			s.media.discardImage(ctx, imageURL)
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrPostNotFound
	}

	s.media.publish(ctx, model.ContentEvent{
		Type:             model.EventPostUpdated,
		PostID:           input.PostID,
		UserID:           input.UserID,
		ImageURL:         deref(imageURL),
		PreviousImageURL: deref(existing.ImageURL),
	})
	return s.reload(ctx, input.PostID)
}

// DeletePost reports ErrForbidden for another user's post. The delete itself
// is still constrained to rows owned by the caller.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	if userID == 0 || postID == 0 {
		return ErrInvalidInput
	}

	existing, err := s.authorize(ctx, userID, postID)
	if err != nil {
		return err
	}

	deleted, err := s.postRepo.DeleteByIDAndUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPostNotFound
	}

	s.media.publish(ctx, model.ContentEvent{
		Type:     model.EventPostDeleted,
		PostID:   postID,
		UserID:   userID,
		ImageURL: deref(existing.ImageURL),
	})
	return nil
}

func (s *PostService) authorize(ctx context.Context, userID, postID uint) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != userID {
		return nil, ErrForbidden
	}
	return post, nil
}

func (s *PostService) reload(ctx context.Context, id uint) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}
