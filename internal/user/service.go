package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/saldo/internal/identity"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	InsertUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, update UpdateParams) error
}

type Service struct {
	repo     Repository
	accounts identity.Provider
	now      func() time.Time
}

func NewService(repo Repository, accounts identity.Provider) *Service {
	return &Service{repo: repo, accounts: accounts, now: time.Now}
}

type RegisterParams struct {
	Email    string
	Password string
	Username string
}

// UpdateParams holds the profile fields to change; nil leaves a field as is.
type UpdateParams struct {
	Username *string
	Photo    *string
}

// Register creates an identity account and the matching profile with a zero
// balance. The account is removed again if the profile cannot be stored.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	email := strings.TrimSpace(params.Email)
	username := strings.TrimSpace(params.Username)

	if email == "" || params.Password == "" || username == "" {
		return nil, ErrMissingFields
	}

	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	uid, err := s.accounts.CreateAccount(ctx, email, params.Password, username)
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	u := &User{
		ID:        uid,
		Username:  username,
		Email:     strings.ToLower(email),
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.InsertUser(ctx, u); err != nil {
		if delErr := s.accounts.DeleteAccount(ctx, uid); delErr != nil {
			slog.Error("failed to remove orphaned account", "user_id", uid, "error", delErr)
		}

		return nil, fmt.Errorf("creating profile: %w", err)
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// UpdateProfile applies the non-empty fields of update and returns them.
func (s *Service) UpdateProfile(ctx context.Context, id string, update UpdateParams) (UpdateParams, error) {
	var fields UpdateParams

	if update.Username != nil && strings.TrimSpace(*update.Username) != "" {
		name := strings.TrimSpace(*update.Username)
		fields.Username = &name
	}

	if update.Photo != nil && strings.TrimSpace(*update.Photo) != "" {
		photo := strings.TrimSpace(*update.Photo)
		fields.Photo = &photo
	}

	if fields.Username == nil && fields.Photo == nil {
		return fields, ErrNothingToUpdate
	}

	if err := s.repo.UpdateProfile(ctx, id, fields); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fields, err
		}

		return fields, fmt.Errorf("updating profile: %w", err)
	}

	return fields, nil
}

func (s *Service) Balance(ctx context.Context, id string) (int64, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return 0, err
	}

	return u.Balance, nil
}
