// Package identity issues and verifies bearer tokens for locally stored accounts.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotFound           = errors.New("account not found")
	ErrInvalidPassword    = errors.New("password must be at most 72 bytes")
)

// Provider is what the rest of the system needs from an identity backend.
//
//go:generate mockgen -source=identity.go -destination=provider_mock.go -package=identity
type Provider interface {
	VerifyToken(ctx context.Context, token string) (*Claims, error)
	CreateAccount(ctx context.Context, email, password, displayName string) (string, error)
	GetAccount(ctx context.Context, uid string) (*Account, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	DeleteAccount(ctx context.Context, uid string) error
}

type Account struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	PhotoURL     *string
	CreatedAt    time.Time
	LastSignInAt *time.Time
}

// Claims is the verified content of a bearer token.
type Claims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
