package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/recipebox/recipe-api/internal/id"
)

const (
	tokenIssuer   = "recipe-api"
	tokenAudience = "recipe-api-client"

	claimUserID    = "user_id"
	claimEmail     = "email"
	claimSessionID = "sid"

	refreshTokenSize = 32
)

// Token verification failures.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// AccessClaims are the claims carried in an access token.
type AccessClaims struct {
	UserID    string
	Email     string
	SessionID string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Subject is the minimal identity an access token is minted for.
type Subject struct {
	UserID string
	Email  string
}

// TokenService issues PASETO v4.local access tokens and opaque refresh tokens.
type TokenService struct {
	key             paseto.V4SymmetricKey
	accessDuration  time.Duration
	refreshDuration time.Duration
	now             func() time.Time
}

// NewTokenService creates a TokenService from a 32-byte key.
func NewTokenService(key []byte, accessDuration, refreshDuration time.Duration) (*TokenService, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("token key must be %d bytes, got %d", keySize, len(key))
	}

	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create symmetric key: %w", err)
	}

	return &TokenService{
		key:             symmetric,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		now:             time.Now,
	}, nil
}

// GenerateAccessToken mints an access token bound to sessionID.
func (s *TokenService) GenerateAccessToken(sub Subject, sessionID string) (string, error) {
	now := s.now()

	jti, err := id.Generate("tok")
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(sub.UserID)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.accessDuration))
	token.SetJti(jti)
	token.SetString(claimUserID, sub.UserID)
	token.SetString(claimEmail, sub.Email)
	token.SetString(claimSessionID, sessionID)

	return token.V4Encrypt(s.key, nil), nil
}

// VerifyAccessToken decrypts tokenString and checks issuer, audience and
// validity window. Expiry is reported as ErrExpiredToken, every other
// failure as ErrInvalidToken.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ForAudience(tokenAudience))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	exp, err := token.GetExpiration()
	if err != nil {
		return nil, fmt.Errorf("%w: missing expiration", ErrInvalidToken)
	}
	now := s.now()
	if !now.Before(exp) {
		return nil, ErrExpiredToken
	}
	if nbf, err := token.GetNotBefore(); err == nil && now.Before(nbf) {
		return nil, fmt.Errorf("%w: not yet valid", ErrInvalidToken)
	}

	claims := &AccessClaims{ExpiresAt: exp}
	if claims.UserID, err = token.GetString(claimUserID); err != nil {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidToken)
	}
	if claims.SessionID, err = token.GetString(claimSessionID); err != nil {
		return nil, fmt.Errorf("%w: missing session", ErrInvalidToken)
	}
	claims.Email, _ = token.GetString(claimEmail)
	claims.TokenID, _ = token.GetJti()
	claims.IssuedAt, _ = token.GetIssuedAt()

	return claims, nil
}

// GenerateRefreshToken returns a random opaque refresh token. Only its
// hash is ever stored.
func (s *TokenService) GenerateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashRefreshToken returns the hex SHA-256 of token.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// AccessTokenDuration returns the access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessDuration
}

// RefreshTokenDuration returns the refresh token (session) lifetime.
func (s *TokenService) RefreshTokenDuration() time.Duration {
	return s.refreshDuration
}
