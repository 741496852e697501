package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	InsertAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, id string) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	TouchSignIn(ctx context.Context, id string, at time.Time) error
	DeleteAccount(ctx context.Context, id string) error
}

// Local is a Provider backed by the accounts table, issuing HS256 tokens.
type Local struct {
	repo   Repository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

type Option func(*Local)

// WithCost sets the bcrypt cost used for new password hashes.
func WithCost(cost int) Option {
	return func(l *Local) { l.cost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(l *Local) { l.now = now }
}

func NewLocal(repo Repository, secret string, ttl time.Duration, opts ...Option) *Local {
	l := &Local{
		repo:   repo,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (l *Local) issue(a *Account) (string, error) {
	now := l.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email: a.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.ttl)),
		},
	})

	signed, err := token.SignedString(l.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

func (l *Local) VerifyToken(_ context.Context, token string) (*Claims, error) {
	var claims tokenClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return l.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrUnauthorized
	}

	c := &Claims{
		UserID:    claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	if claims.IssuedAt != nil {
		c.IssuedAt = claims.IssuedAt.Time
	}

	return c, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (l *Local) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	email = normalizeEmail(email)

	if _, err := l.repo.GetAccountByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("looking up email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrInvalidPassword
		}

		return "", fmt.Errorf("hashing password: %w", err)
	}

	a := &Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    l.now().UTC(),
	}

	// the store reports ErrEmailTaken when a concurrent sign-up won the race
	if err := l.repo.InsertAccount(ctx, a); err != nil {
		return "", fmt.Errorf("creating account: %w", err)
	}

	return a.ID, nil
}

func (l *Local) GetAccount(ctx context.Context, uid string) (*Account, error) {
	return l.repo.GetAccount(ctx, uid)
}

// SignIn checks the password and returns a fresh bearer token.
func (l *Local) SignIn(ctx context.Context, email, password string) (string, error) {
	a, err := l.repo.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}

		return "", fmt.Errorf("looking up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	if err := l.repo.TouchSignIn(ctx, a.ID, l.now().UTC()); err != nil {
		return "", fmt.Errorf("recording sign-in: %w", err)
	}

	return l.issue(a)
}

func (l *Local) DeleteAccount(ctx context.Context, uid string) error {
	return l.repo.DeleteAccount(ctx, uid)
}
