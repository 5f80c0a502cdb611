package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor is the authenticated identity attached to a request. A nil Actor
// means the caller is a guest.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

func (a *Actor) IsBuyer() bool {
	return a != nil && a.Role == RoleBuyer
}

func (a *Actor) IsSeller() bool {
	return a != nil && a.Role == RoleSeller
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=buyer seller"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	Role      Role   `json:"role"`
}

// IdentityEvent signals that a user signed in, signed out, or changed role.
// Role is empty on sign-out. The cart subsystem reacts to these to keep its
// ownership invariant: only an authenticated buyer holds a populated cart.
type IdentityEvent struct {
	UserID uuid.UUID
	Role   Role
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() *Actor {
	return &Actor{UserID: c.UserID, Email: c.Email, Role: c.Role}
}
