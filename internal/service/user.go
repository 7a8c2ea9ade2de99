package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/recipebox/recipe-api/internal/auth"
	"github.com/recipebox/recipe-api/internal/domain"
	"github.com/recipebox/recipe-api/internal/normalize"
	"github.com/recipebox/recipe-api/internal/store"
	"github.com/recipebox/recipe-api/internal/validation"
)

// UserService manages the authenticated user's own profile.
type UserService struct {
	users          store.UserStore
	sessionService *SessionService
	hasher         *auth.PasswordHasher
	validator      *validation.Validator
	logger         *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	users store.UserStore,
	sessionService *SessionService,
	hasher *auth.PasswordHasher,
	validator *validation.Validator,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:          users,
		sessionService: sessionService,
		hasher:         hasher,
		validator:      validator,
		logger:         logger,
	}
}

// UpdateProfileRequest holds optional profile changes. Nil fields are kept.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=1024"`
}

// GetProfile returns the user.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetUser(ctx, userID)
}

// UpdateProfile applies req to the user. A password change revokes every
// other session of the user; currentSessionID stays valid.
func (s *UserService) UpdateProfile(ctx context.Context, userID, currentSessionID string, req UpdateProfileRequest) (*domain.User, error) {
	if req.Name != nil {
		name := normalize.Text(*req.Name)
		req.Name = &name
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.Touch()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if req.Password != nil {
		revoked, err := s.sessionService.RevokeOtherSessions(ctx, userID, currentSessionID)
		if err != nil {
			return nil, err
		}
		if s.logger != nil {
			s.logger.Info("Password changed", "user_id", userID, "revoked_sessions", revoked)
		}
	}

	return user, nil
}
