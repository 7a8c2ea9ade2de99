package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/recipebox/recipe-api/internal/auth"
	"github.com/recipebox/recipe-api/internal/domain"
	domainerrors "github.com/recipebox/recipe-api/internal/errors"
	"github.com/recipebox/recipe-api/internal/id"
	"github.com/recipebox/recipe-api/internal/store"
)

// SessionStore persists refresh sessions. *store.SessionStore implements it.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error)
}

// ClientInfo describes the caller a session is opened for.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// SessionResponse carries a fresh token pair.
type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // seconds until the access token expires
	SessionID    string `json:"session_id"`
}

// SessionService opens, rotates and revokes refresh sessions.
type SessionService struct {
	sessions SessionStore
	users    store.UserStore
	tokens   *auth.TokenService
	logger   *slog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(sessions SessionStore, users store.UserStore, tokens *auth.TokenService, logger *slog.Logger) *SessionService {
	return &SessionService{sessions: sessions, users: users, tokens: tokens, logger: logger}
}

// CreateSession opens a session for user and issues its first token pair.
func (s *SessionService) CreateSession(ctx context.Context, user *domain.User, client ClientInfo) (*SessionResponse, error) {
	sessionID, err := id.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		CreatedAt:        now,
		LastSeenAt:       now,
		ExpiresAt:        now.Add(s.tokens.RefreshTokenDuration()),
		UserAgent:        client.UserAgent,
		IPAddress:        client.IPAddress,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return s.issue(user, session, refreshToken)
}

// RefreshSession exchanges a refresh token for a new pair. The presented
// token stops working (rotation) and the session expiry slides forward.
func (s *SessionService) RefreshSession(ctx context.Context, refreshToken string, client ClientInfo) (*SessionResponse, *domain.User, error) {
	session, err := s.sessions.GetSessionByRefreshToken(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) || errors.Is(err, store.ErrSessionExpired) {
			return nil, nil, domainerrors.TokenExpired("invalid or expired refresh token").WithCause(err)
		}
		return nil, nil, fmt.Errorf("lookup session: %w", err)
	}

	user, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.sessions.DeleteSession(ctx, session.ID)
			return nil, nil, domainerrors.Unauthorized("user no longer exists")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	newRefresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	session.RefreshTokenHash = auth.HashRefreshToken(newRefresh)
	session.LastSeenAt = now
	session.ExpiresAt = now.Add(s.tokens.RefreshTokenDuration())
	if client.UserAgent != "" {
		session.UserAgent = client.UserAgent
	}
	if client.IPAddress != "" {
		session.IPAddress = client.IPAddress
	}

	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("update session: %w", err)
	}

	resp, err := s.issue(user, session, newRefresh)
	if err != nil {
		return nil, nil, err
	}
	return resp, user, nil
}

// ValidateSession returns the live session id belonging to userID.
func (s *SessionService) ValidateSession(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) || errors.Is(err, store.ErrSessionExpired) {
			return nil, domainerrors.Unauthorized("session revoked or expired").WithCause(err)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		return nil, domainerrors.Unauthorized("session does not belong to user")
	}
	return session, nil
}

// DeleteSession revokes a session (logout).
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("Session deleted", "session_id", sessionID)
	return nil
}

// RevokeOtherSessions deletes every session of userID except keepID.
func (s *SessionService) RevokeOtherSessions(ctx context.Context, userID, keepID string) (int, error) {
	sessions, err := s.sessions.ListUserSessions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}

	revoked := 0
	for _, session := range sessions {
		if session.ID == keepID {
			continue
		}
		if err := s.sessions.DeleteSession(ctx, session.ID); err != nil {
			return revoked, fmt.Errorf("delete session: %w", err)
		}
		revoked++
	}
	return revoked, nil
}

func (s *SessionService) issue(user *domain.User, session *domain.Session, refreshToken string) (*SessionResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(auth.Subject{UserID: user.ID, Email: user.Email}, session.ID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokens.AccessTokenDuration().Seconds()),
		SessionID:    session.ID,
	}, nil
}
