package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Repository interface {
	UpsertCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, name string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateParams struct {
	Name    string `yaml:"name"`
	Default bool   `yaml:"default"`
}

// Create stores a category, replacing any existing one with the same name.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrMissingName
	}

	c := &Category{
		Name:      name,
		Default:   params.Default,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.UpsertCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("saving category: %w", err)
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, name string) (*Category, error) {
	return s.repo.GetCategory(ctx, strings.TrimSpace(name))
}

func (s *Service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.Get(ctx, name)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	return false, err
}

// Seed upserts every category in params and returns how many were written.
func (s *Service) Seed(ctx context.Context, params []CreateParams) (int, error) {
	for i, p := range params {
		if _, err := s.Create(ctx, p); err != nil {
			return i, fmt.Errorf("seeding %q: %w", p.Name, err)
		}
	}

	return len(params), nil
}
