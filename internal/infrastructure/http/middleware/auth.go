package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/infrastructure/http/render"
	"github.com/alchemorsel/foodgram/internal/infrastructure/security"
	"github.com/alchemorsel/foodgram/pkg/errors"
)

type contextKey string

const viewerKey contextKey = "viewer"

// TokenValidator checks bearer tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*security.Claims, error)
}

// WithViewer stores viewer in ctx
func WithViewer(ctx context.Context, viewer shared.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, viewer)
}

// ViewerFromContext returns the request's viewer, anonymous when no valid
// token was presented.
func ViewerFromContext(ctx context.Context) shared.Viewer {
	if viewer, ok := ctx.Value(viewerKey).(shared.Viewer); ok {
		return viewer
	}
	return shared.Anonymous()
}

// OptionalAuth resolves a bearer token when one is sent. Requests without
// an Authorization header continue anonymously; a bad token is rejected.
func OptionalAuth(tokens TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return authenticate(tokens, logger, false)
}

// Authenticate requires a valid bearer token
func Authenticate(tokens TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return authenticate(tokens, logger, true)
}

func authenticate(tokens TokenValidator, logger *zap.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				if required {
					render.Error(w, r, logger, errors.NewUnauthorizedError("Authentication credentials were not provided"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				render.Error(w, r, logger, errors.NewUnauthorizedError("Invalid authorization header format"))
				return
			}

			claims, err := tokens.ValidateToken(r.Context(), strings.TrimSpace(token))
			if err != nil {
				logger.Debug("Rejected bearer token", zap.Error(err))
				render.Error(w, r, logger, errors.NewUnauthorizedError("Invalid or expired token"))
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				render.Error(w, r, logger, errors.NewUnauthorizedError("Invalid or expired token"))
				return
			}

			ctx := WithViewer(r.Context(), shared.AuthenticatedAs(userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
