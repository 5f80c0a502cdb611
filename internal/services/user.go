package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/bazaarly/storefront/internal/config"
	appErrors "github.com/bazaarly/storefront/internal/errors"
	"github.com/bazaarly/storefront/internal/models"
	repository "github.com/bazaarly/storefront/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// IdentityListener is notified after a login or logout has taken effect.
type IdentityListener func(ctx context.Context, event models.IdentityEvent)

// UserService handles registration, login and profile lookup. Login and
// logout publish an IdentityEvent so dependent state, most importantly
// the cart, can react to the identity change.
type UserService struct {
	repo      repository.UserRepository
	security  config.Security
	logger    *slog.Logger
	listeners []IdentityListener
}

func NewUserService(repo repository.UserRepository, security config.Security, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, security: security, logger: logger}
}

// OnIdentityChange registers a listener. Registration is wiring-time
// only and is not safe to call once requests are being served.
func (s *UserService) OnIdentityChange(listener IdentityListener) {
	s.listeners = append(s.listeners, listener)
}

func (s *UserService) publish(ctx context.Context, event models.IdentityEvent) {
	for _, listener := range s.listeners {
		listener(ctx, event)
	}
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	_, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return nil, appErrors.DuplicateEntryError("An account with this email already exists")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.DatabaseError("Failed to check existing account").WithError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.InternalError("Failed to hash password").WithError(err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     models.Role(req.Role),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, appErrors.DatabaseError("Failed to create account").WithError(err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID.String()),
		slog.String("role", string(user.Role)))

	return user, nil
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.UnauthorizedError("Invalid email or password")
		}

		return nil, appErrors.DatabaseError("Failed to look up account").WithError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, appErrors.UnauthorizedError("Invalid email or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, appErrors.InternalError("Failed to issue token").WithError(err)
	}

	s.publish(ctx, models.IdentityEvent{UserID: user.ID, Role: user.Role})

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int(s.security.TokenTTL.Seconds()),
		Role:      user.Role,
	}, nil
}

// Logout publishes the sign-out event. Tokens are stateless, so the
// server keeps nothing to revoke; dependent state still has to be told.
func (s *UserService) Logout(ctx context.Context, actor *models.Actor) {
	if actor == nil {
		return
	}

	s.publish(ctx, models.IdentityEvent{UserID: actor.UserID})
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("User not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch profile").WithError(err)
	}

	return user, nil
}

func (s *UserService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.security.TokenTTL)),
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.security.JWTKey))
}
