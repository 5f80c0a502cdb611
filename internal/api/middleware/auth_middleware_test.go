package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bazaarly/storefront/internal/api/middleware"
	"github.com/bazaarly/storefront/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJwtKey = []byte("test-secret-key-123456789012345")

func createTestToken(userID uuid.UUID, role models.Role, duration time.Duration, key []byte, method jwt.SigningMethod) (string, error) {
	claims := &models.Claims{
		UserID: userID,
		Email:  "test@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(method, claims)

	return token.SignedString(key)
}

func TestAuthenticate(t *testing.T) {
	authMiddleware := middleware.NewAuthMiddleware(testJwtKey)
	userID := uuid.New()

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		require.NotNil(t, actor, "actor should be in context")
		assert.Equal(t, userID, actor.UserID)
		assert.Equal(t, models.RoleBuyer, actor.Role)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Success - Valid token reaches the handler", func(t *testing.T) {
		// Arrange
		token, err := createTestToken(userID, models.RoleBuyer, time.Hour, testJwtKey, jwt.SigningMethodHS256)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.Authenticate(nextHandler)(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		recorder := httptest.NewRecorder()

		authMiddleware.Authenticate(nextHandler)(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Malformed header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		recorder := httptest.NewRecorder()

		authMiddleware.Authenticate(nextHandler)(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Expired token is rejected", func(t *testing.T) {
		token, err := createTestToken(userID, models.RoleBuyer, -time.Hour, testJwtKey, jwt.SigningMethodHS256)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()

		authMiddleware.Authenticate(nextHandler)(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Token signed with the wrong key is rejected", func(t *testing.T) {
		token, err := createTestToken(userID, models.RoleBuyer, time.Hour, []byte("some-other-key-9876543210987654"), jwt.SigningMethodHS256)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()

		authMiddleware.Authenticate(nextHandler)(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestOptional(t *testing.T) {
	authMiddleware := middleware.NewAuthMiddleware(testJwtKey)

	t.Run("No token passes through as a guest", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		recorder := httptest.NewRecorder()

		authMiddleware.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Nil(t, middleware.ActorFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Garbage token also passes through as a guest", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		recorder := httptest.NewRecorder()

		authMiddleware.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Nil(t, middleware.ActorFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Valid token attaches the actor", func(t *testing.T) {
		userID := uuid.New()
		token, err := createTestToken(userID, models.RoleBuyer, time.Hour, testJwtKey, jwt.SigningMethodHS256)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()

		authMiddleware.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := middleware.ActorFromContext(r.Context())
			require.NotNil(t, actor)
			assert.Equal(t, userID, actor.UserID)
			w.WriteHeader(http.StatusOK)
		}))(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestRequireRole(t *testing.T) {
	authMiddleware := middleware.NewAuthMiddleware(testJwtKey)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Matching role is allowed", func(t *testing.T) {
		token, err := createTestToken(uuid.New(), models.RoleSeller, time.Hour, testJwtKey, jwt.SigningMethodHS256)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()

		authMiddleware.RequireRole(models.RoleSeller, nextHandler)(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Wrong role is forbidden", func(t *testing.T) {
		token, err := createTestToken(uuid.New(), models.RoleBuyer, time.Hour, testJwtKey, jwt.SigningMethodHS256)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()

		authMiddleware.RequireRole(models.RoleSeller, nextHandler)(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("No token is unauthorized before the role check", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		recorder := httptest.NewRecorder()

		authMiddleware.RequireRole(models.RoleSeller, nextHandler)(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
