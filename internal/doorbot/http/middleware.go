package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/pkg/httpx"
	"github.com/tinkerhall/doorbot/pkg/slogx"
)

type memberCtxKey struct{}

// MemberFromContext returns the authenticated member attached by
// requireAuth.
func MemberFromContext(ctx context.Context) (domain.Member, bool) {
	m, ok := ctx.Value(memberCtxKey{}).(domain.Member)
	return m, ok
}

// requireAuth authenticates every request with either HTTP basic
// credentials (tag or username plus password) or an opaque bearer
// token, and attaches the resolved member to the request context.
func (r *Router) requireAuth() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			m, ok := r.authenticate(req)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="doorbot"`)
				httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorResponse{
					Error:            "unauthorized",
					ErrorDescription: "valid credentials or bearer token required",
				})
				return
			}

			logger := slogx.FromContext(ctx).With("member_id", m.ID)
			ctx = slogx.WithContext(ctx, logger)
			ctx = context.WithValue(ctx, memberCtxKey{}, m)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func (r *Router) authenticate(req *http.Request) (domain.Member, bool) {
	ctx := req.Context()

	header := req.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		m, err := r.AuthService.VerifyBearerToken(ctx, strings.TrimSpace(token))
		return m, err == nil
	}

	if login, password, ok := req.BasicAuth(); ok {
		m, err := r.AuthService.VerifyPassword(ctx, login, password)
		return m, err == nil
	}

	return domain.Member{}, false
}
