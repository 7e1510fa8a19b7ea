package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rizz-social/internal/model"
	"rizz-social/internal/storage"
)

type UserService struct {
	userRepo UserStore
	media    media
}

// UpdateProfileInput fields that are nil or blank keep their stored value.
type UpdateProfileInput struct {
	UserID   uint
	Username *string
	Email    *string
	Password *string
	Avatar   *storage.Upload
}

func NewUserService(userRepo UserStore, images ImageStore, publisher EventPublisher) *UserService {
	return &UserService{
		userRepo: userRepo,
		media:    media{images: images, publisher: publisher},
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	return s.GetUserByID(ctx, userID)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*model.User, error) {
	user, err := s.GetUserByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	previousAvatar := deref(user.ProfilePicture)

	if username := trimmed(input.Username); username != "" && username != user.Username {
		if err := validateField("username", username, usernameRules); err != nil {
			return nil, err
		}
		other, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			return nil, ErrUsernameExists
		}
		user.Username = username
	}

	if email := strings.ToLower(trimmed(input.Email)); email != "" && email != user.Email {
		if err := validateField("email", email, emailRules); err != nil {
			return nil, err
		}
		other, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			return nil, ErrEmailExists
		}
		user.Email = email
	}

	if input.Password != nil && strings.TrimSpace(*input.Password) != "" {
		password := *input.Password
		if err := validateField("password", password, passwordRules); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password failed: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if input.Avatar != nil {
		avatar, err := s.media.saveImage(ctx, input.Avatar)
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = avatar
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if input.Avatar != nil {
			s.media.discardImage(ctx, user.ProfilePicture)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.conflictFor(ctx, user)
		}
		return nil, err
	}

	if input.Avatar != nil {
		s.media.publish(ctx, model.ContentEvent{
			Type:             model.EventProfileUpdated,
			UserID:           user.ID,
			ImageURL:         deref(user.ProfilePicture),
			PreviousImageURL: previousAvatar,
		})
	}
	return s.GetUserByID(ctx, user.ID)
}

// conflictFor resolves which unique index a concurrent profile update hit.
func (s *UserService) conflictFor(ctx context.Context, user *model.User) error {
	if other, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil && other != nil && other.ID != user.ID {
		return ErrUsernameExists
	}
	return ErrEmailExists
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
