package models

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Credentials are what a person types into the login form
type Credentials struct {
	Email    string
	Name     string
	Password string
}

// Seeded accounts assumed to exist in the application under test
var (
	Oliver = Credentials{Email: "oliver@example.com", Name: "Oliver Smith", Password: "welcome"}
	Sam    = Credentials{Email: "sam@example.com", Name: "Sam Smith", Password: "welcome"}
)

// SeedAccounts returns the fixed accounts every run relies on
func SeedAccounts() []Credentials {
	return []Credentials{Oliver, Sam}
}

// RandomCredentials generates a fresh account for registration tests
func RandomCredentials() Credentials {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	local := strings.ToLower(strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, first))
	if local == "" {
		local = "user"
	}

	return Credentials{
		Name:     first + " " + last,
		Email:    fmt.Sprintf("%s.%s@example.com", local, uuid.NewString()[:8]),
		Password: gofakeit.Password(true, true, true, false, false, 12),
	}
}

// RandomTaskName returns five random words, enough to keep task names from
// colliding between tests that share an account.
func RandomTaskName() string {
	words := make([]string, 0, 5)
	for len(words) < 5 {
		w := strings.TrimSpace(gofakeit.Word())
		if w == "" || strings.ContainsAny(w, " \t") {
			continue
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}

// MinPasswordLength is the shortest password the application accepts
const MinPasswordLength = 6

// User is an account of the stand-in application
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Domain errors
var (
	ErrInvalidName      = errors.New("name cannot be empty")
	ErrInvalidEmail     = errors.New("email is invalid")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordMismatch = errors.New("password confirmation does not match")
)

// NewUser creates a new user with validation and a hashed password
func NewUser(name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, ErrInvalidName
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}, nil
}

// CheckPassword returns true if password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
