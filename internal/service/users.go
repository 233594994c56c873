package service

import (
	"context"
	"errors"
	"strings"

	"github.com/nhle/taskboard/internal/auth"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

const minPasswordLen = 8

// UserService handles accounts: registration, login, and lookups.
type UserService struct {
	store  store.Store
	tokens *auth.Manager
}

// NewUserService builds a UserService.
func NewUserService(s store.Store, tokens *auth.Manager) *UserService {
	return &UserService{store: s, tokens: tokens}
}

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	Role       string
	Department string
}

// Register creates an account and returns the user with a signed token.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	fields := map[string]string{}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "must be a valid email address"
	}
	if len(input.Password) < minPasswordLen {
		fields["password"] = "must be at least 8 characters"
	}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "missed value"
	}
	if len(fields) > 0 {
		return nil, "", &ValidationError{Fields: fields}
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, "", &ConflictError{Reason: "an account with this email already exists"}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.store.CreateUser(ctx, model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Role:         input.Role,
		Department:   input.Department,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with a signed token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", &AccessDeniedError{Reason: "invalid credentials"}
		}
		return nil, "", err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", &AccessDeniedError{Reason: "invalid credentials"}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Get returns a single user by id.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.store.GetUsers(ctx)
}
