package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bazaarly/storefront/internal/errors"
	"github.com/bazaarly/storefront/internal/models"
	"github.com/bazaarly/storefront/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
)

type actorContextKey struct{}

var actorKey = actorContextKey{}

type AuthMiddleware struct {
	jwtKey []byte
}

func NewAuthMiddleware(jwtKey []byte) *AuthMiddleware {
	return &AuthMiddleware{jwtKey: jwtKey}
}

// Authenticate rejects requests without a valid bearer token and attaches
// the authenticated actor to the context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := LoggerFromContext(r.Context())

		actor, appErr := m.actorFromRequest(r, logger)
		if appErr != nil {
			response.Error(w, appErr)

			return
		}

		requestLogger := logger.With(slog.String("userId", actor.UserID.String()))
		ctx := WithActor(r.Context(), actor)
		ctx = context.WithValue(ctx, loggerKey, requestLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// Optional attaches the actor when a valid token is present and lets the
// request through as a guest otherwise. The cart endpoints use it: the
// ownership check there must produce a domain error, not a transport 401.
func (m *AuthMiddleware) Optional(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := LoggerFromContext(r.Context())

		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)

			return
		}

		actor, appErr := m.actorFromRequest(r, logger)
		if appErr != nil {
			// a malformed token is as anonymous as no token
			next.ServeHTTP(w, r)

			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	}
}

// RequireRole layers on Authenticate and rejects actors holding any other
// role.
func (m *AuthMiddleware) RequireRole(role models.Role, next http.Handler) http.HandlerFunc {
	return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromContext(r.Context())
		if actor == nil || actor.Role != role {
			LoggerFromContext(r.Context()).Warn("Role check failed",
				slog.String("required", string(role)))
			response.Error(w, errors.AuthorizationError("You do not have permission to perform this action"))

			return
		}

		next.ServeHTTP(w, r)
	}))
}

func (m *AuthMiddleware) actorFromRequest(r *http.Request, logger *slog.Logger) (*models.Actor, *errors.AppError) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		logger.Warn("Missing authorization header")

		return nil, errors.UnauthorizedError("Authorization header is required")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		logger.Warn("Invalid authorization header format")

		return nil, errors.UnauthorizedError("Invalid authorization format")
	}

	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenParts[1], claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			logger.Error("Unexpected signing method used in JWT", slog.Any("alg", t.Header["alg"]))

			return nil, errors.BadRequestError("unexpected signing method")
		}

		return m.jwtKey, nil
	})
	if err != nil {
		logger.Warn("JWT parsing failed", slog.String("error", err.Error()))

		return nil, errors.UnauthorizedError("Invalid or expired token")
	}

	if !token.Valid {
		logger.Warn("Invalid token")

		return nil, errors.UnauthorizedError("Invalid token")
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		logger.Warn("Expired token", slog.String("userId", claims.UserID.String()))

		return nil, errors.UnauthorizedError("Token expired")
	}

	return claims.Actor(), nil
}

// WithActor attaches an actor to the context.
func WithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated actor, or nil for a guest.
func ActorFromContext(ctx context.Context) *models.Actor {
	if actor, ok := ctx.Value(actorKey).(*models.Actor); ok {
		return actor
	}

	return nil
}
