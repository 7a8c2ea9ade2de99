package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// rateLimited is a huma operation middleware limiting requests per client
// IP. RealIP has already folded proxy headers into RemoteAddr.
func (s *Server) rateLimited(ctx huma.Context, next func(huma.Context)) {
	key := remoteIP(ctx.RemoteAddr())

	if !s.authRateLimiter.Allow(key) {
		u := ctx.URL()
		s.logger.Warn("Rate limit exceeded",
			"ip", key,
			"path", u.Path,
		)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many requests, try again later")
		return
	}

	next(ctx)
}
