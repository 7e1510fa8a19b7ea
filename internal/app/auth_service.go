package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rizz-social/internal/logging"
	"rizz-social/internal/metrics"
	"rizz-social/internal/model"
	"rizz-social/internal/pkg/jwtutil"
	"rizz-social/internal/storage"
)

type AuthService struct {
	userRepo      UserStore
	media         media
	guard         LoginGuard
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Avatar   *storage.Upload
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// NewAuthService accepts a nil guard (no lockout) and a nil images store
// (registration without profile pictures).
func NewAuthService(
	userRepo UserStore,
	images ImageStore,
	guard LoginGuard,
	jwtSecret string,
	jwtExpiration time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		media:         media{images: images},
		guard:         guard,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password

	if err := validateField("username", username, usernameRules); err != nil {
		return nil, err
	}
	if err := validateField("email", email, emailRules); err != nil {
		return nil, err
	}
	if err := validateField("password", password, passwordRules); err != nil {
		return nil, err
	}

	existingByName, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existingByName != nil {
		return nil, ErrUsernameExists
	}

	existingByEmail, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	avatar, err := s.media.saveImage(ctx, input.Avatar)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       username,
		Email:          email,
		PasswordHash:   string(hash),
		ProfilePicture: avatar,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.media.discardImage(ctx, avatar)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.conflictFor(ctx, username)
		}
		return nil, err
	}
	return user, nil
}

// conflictFor resolves which unique index a concurrent registration hit.
func (s *AuthService) conflictFor(ctx context.Context, username string) error {
	if existing, err := s.userRepo.GetByUsername(ctx, username); err == nil && existing != nil {
		return ErrUsernameExists
	}
	return ErrEmailExists
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := input.Password
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	if s.guard != nil {
		allowed, err := s.guard.Allow(ctx, username)
		if err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("login guard unavailable")
		}
		if !allowed {
			return nil, ErrTooManyAttempts
		}
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.recordFailure(ctx, username)
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(ctx, username)
		return nil, ErrInvalidCredential
	}

	if s.guard != nil {
		if err := s.guard.Reset(ctx, username); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("reset login failures failed")
		}
	}

	token, expiresAt, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	metrics.LoginFailuresTotal.Inc()
	if s.guard == nil {
		return
	}
	if err := s.guard.RecordFailure(ctx, username); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("record login failure failed")
	}
}
