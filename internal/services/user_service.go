package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"savvy/internal/auth"
	"savvy/internal/core"
	"savvy/internal/storage"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords so a caller cannot probe which emails are registered.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService handles registration and login.
type UserService struct {
	storage         *storage.SQLiteRepository
	tokens          *auth.TokenManager
	defaultCurrency string
}

func NewUserService(storage *storage.SQLiteRepository, tokens *auth.TokenManager, defaultCurrency string) *UserService {
	return &UserService{
		storage:         storage,
		tokens:          tokens,
		defaultCurrency: defaultCurrency,
	}
}

// Register creates a new user and returns a session token.
func (s *UserService) Register(ctx context.Context, email, password, currency string) (core.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return core.User{}, "", core.ErrEmptyEmail
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, "", err
	}

	if currency == "" {
		currency = s.defaultCurrency
	}

	user := core.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Currency:     core.NormalizeCurrency(currency),
		CreatedAt:    time.Now(),
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		return core.User{}, "", err
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return core.User{}, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.User{}, "", ErrInvalidCredentials
		}
		return core.User{}, "", err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return core.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return core.User{}, "", err
	}
	return user, token, nil
}
