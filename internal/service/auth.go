package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/recipebox/recipe-api/internal/auth"
	"github.com/recipebox/recipe-api/internal/domain"
	domainerrors "github.com/recipebox/recipe-api/internal/errors"
	"github.com/recipebox/recipe-api/internal/id"
	"github.com/recipebox/recipe-api/internal/normalize"
	"github.com/recipebox/recipe-api/internal/store"
	"github.com/recipebox/recipe-api/internal/validation"
)

// AuthService handles registration, login and token verification.
// Session bookkeeping is delegated to SessionService.
type AuthService struct {
	users          store.UserStore
	tokenService   *auth.TokenService
	sessionService *SessionService
	hasher         *auth.PasswordHasher
	validator      *validation.Validator
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users store.UserStore,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	hasher *auth.PasswordHasher,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:          users,
		tokenService:   tokenService,
		sessionService: sessionService,
		hasher:         hasher,
		validator:      validator,
		logger:         logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"max=255"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required"`
	Client   ClientInfo `json:"-"` // filled by the handler
}

// RefreshRequest carries the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string     `json:"refresh_token" validate:"required"`
	Client       ClientInfo `json:"-"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Principal is the authenticated caller behind an access token.
type Principal struct {
	User      *domain.User
	SessionID string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = normalize.Text(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User registered", "user_id", userID)
	}
	return user, nil
}

// Login authenticates a user and opens a new session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the email exists.
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.Client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in", "user_id", user.ID, "session_id", sessionResp.SessionID)
	}

	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// RefreshTokens rotates a refresh token into a new token pair.
func (s *AuthService) RefreshTokens(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, req.Client)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// Logout revokes the session behind the caller's access token.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessionService.DeleteSession(ctx, sessionID)
}

// VerifyAccessToken checks the token signature and expiry, then confirms
// the session it was issued for is still live and the user still exists.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, domainerrors.TokenExpired("access token expired")
		}
		return nil, domainerrors.Unauthorized("invalid access token").WithCause(err)
	}

	if _, err := s.sessionService.ValidateSession(ctx, claims.SessionID, claims.UserID); err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &Principal{User: user, SessionID: claims.SessionID}, nil
}
