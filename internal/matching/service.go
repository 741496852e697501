// Package matching keeps per-user rules that map statement descriptions onto
// categories, so imported rows land in the right category.
package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching

var (
	ErrMissingFields   = errors.New("pattern and category are required")
	ErrUnknownCategory = errors.New("category does not exist")
	ErrNotFound        = errors.New("rule not found")
)

type Rule struct {
	ID        uuid.UUID
	UserID    string
	Pattern   string
	Category  string
	CreatedAt time.Time
}

// Rules is one user's rule set, longest pattern first.
type Rules []Rule

// Match returns the category of the longest pattern contained in description,
// ignoring case, or "" when nothing matches. Equal lengths go to the newest rule.
func (rs Rules) Match(description string) string {
	desc := strings.ToLower(description)

	for _, r := range rs {
		if strings.Contains(desc, strings.ToLower(r.Pattern)) {
			return r.Category
		}
	}

	return ""
}

func (rs Rules) sort() {
	sort.SliceStable(rs, func(i, j int) bool {
		if len(rs[i].Pattern) != len(rs[j].Pattern) {
			return len(rs[i].Pattern) > len(rs[j].Pattern)
		}

		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})
}

type Repository interface {
	// UpsertRule replaces the category of an existing rule with the same
	// user and pattern.
	UpsertRule(ctx context.Context, rule *Rule) error
	ListRules(ctx context.Context, userID string) ([]Rule, error)
	DeleteRule(ctx context.Context, userID string, id uuid.UUID) error
}

type Categories interface {
	Exists(ctx context.Context, name string) (bool, error)
}

type Service struct {
	repo       Repository
	categories Categories
	now        func() time.Time
}

func NewService(repo Repository, categories Categories) *Service {
	return &Service{repo: repo, categories: categories, now: time.Now}
}

// Learn remembers that descriptions containing pattern belong to category.
func (s *Service) Learn(ctx context.Context, userID, pattern, category string) (*Rule, error) {
	pattern = strings.TrimSpace(pattern)
	category = strings.TrimSpace(category)

	if pattern == "" || category == "" {
		return nil, ErrMissingFields
	}

	ok, err := s.categories.Exists(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("checking category: %w", err)
	}

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	rule := &Rule{
		ID:        uuid.New(),
		UserID:    userID,
		Pattern:   pattern,
		Category:  category,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.UpsertRule(ctx, rule); err != nil {
		return nil, err
	}

	return rule, nil
}

func (s *Service) List(ctx context.Context, userID string) (Rules, error) {
	rules, err := s.repo.ListRules(ctx, userID)
	if err != nil {
		return nil, err
	}

	rs := Rules(rules)
	rs.sort()

	return rs, nil
}

// Suggest returns the category a description would be filed under, or "".
func (s *Service) Suggest(ctx context.Context, userID, description string) (string, error) {
	rules, err := s.List(ctx, userID)
	if err != nil {
		return "", err
	}

	return rules.Match(description), nil
}

func (s *Service) Forget(ctx context.Context, userID string, id uuid.UUID) error {
	return s.repo.DeleteRule(ctx, userID, id)
}
