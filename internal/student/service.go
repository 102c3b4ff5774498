package student

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailTaken means another account already uses the email.
	ErrEmailTaken = errors.New("email already in use by another user")
	// ErrNoAccount means no account exists for the email.
	ErrNoAccount = errors.New("email does not exist")
	// ErrBadPassword means the password did not match the stored hash.
	ErrBadPassword = errors.New("incorrect password")
)

const bcryptCost = 10

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, email, passwordHash string) (Student, error)
	FindByEmail(ctx context.Context, email string) (*Student, error)
	FindByID(ctx context.Context, id string) (*Student, error)
}

// Service handles registration and password authentication.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register creates an account for a normalized email. Emails are lowercased
// before the uniqueness check and the insert.
func (s *Service) Register(ctx context.Context, email, password string) (Student, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return Student{}, err
	}
	if existing != nil {
		return Student{}, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return Student{}, err
	}
	return s.store.Create(ctx, email, string(hash))
}

// Authenticate verifies an email/password pair and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Student, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	st, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return Student{}, err
	}
	if st == nil {
		return Student{}, ErrNoAccount
	}
	if bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)) != nil {
		return Student{}, ErrBadPassword
	}
	return *st, nil
}

// Get returns the account for an id, or nil when none exists.
func (s *Service) Get(ctx context.Context, id string) (*Student, error) {
	return s.store.FindByID(ctx, id)
}
