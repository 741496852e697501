package user

import (
	"errors"
	"regexp"
	"time"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrMissingFields   = errors.New("email, password and username are required")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrNothingToUpdate = errors.New("no fields to update")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is the profile row kept next to an identity account. Balance is in cents.
type User struct {
	ID        string
	Username  string
	Email     string
	Photo     *string
	Balance   int64
	CreatedAt time.Time
}
