package category

import (
	"errors"
	"time"
)

var (
	ErrMissingName = errors.New("category name is required")
	ErrNotFound    = errors.New("category not found")
)

// Category is a label that non-income transactions must reference.
type Category struct {
	Name      string
	Default   bool
	CreatedAt time.Time
}
