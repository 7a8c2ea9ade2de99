package api

import (
	"context"
	"net"
	"strings"

	"github.com/recipebox/recipe-api/internal/api/dto"
	domainerrors "github.com/recipebox/recipe-api/internal/errors"
	"github.com/recipebox/recipe-api/internal/service"
)

// authenticateRequest validates the Authorization header and returns the
// caller. Verification failures keep their own code so clients can tell an
// expired token (refresh it) from a revoked one (log in again).
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*service.Principal, error) {
	if authHeader == "" {
		return nil, domainerrors.Unauthorized("missing authorization header")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, domainerrors.Unauthorized("invalid authorization header format")
	}

	return s.services.Auth.VerifyAccessToken(ctx, strings.TrimSpace(token))
}

// clientInfo describes the device behind a login or refresh for the
// session record.
func clientInfo(h dto.ClientHeaders) service.ClientInfo {
	return service.ClientInfo{
		UserAgent: h.UserAgent,
		IPAddress: extractIP(h.XForwardedFor, h.XRealIP),
	}
}

// extractIP picks the first hop of X-Forwarded-For, then X-Real-IP.
func extractIP(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}
	return strings.TrimSpace(realIP)
}

// remoteIP strips the port from a RemoteAddr.
func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
