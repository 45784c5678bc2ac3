// Package auth guards the billing API with bcrypt logins and HS256 tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pos-billing/internal/common/logger"
	"pos-billing/internal/domain"
	"pos-billing/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidInput       = errors.New("invalid account data")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUserExists         = errors.New("username already exists")
)

const maxUsernameLen = 80

// SignupHook runs after an account is created, e.g. to give it default
// shop settings.
type SignupHook func(ctx context.Context, username string) error

type Service struct {
	users  repository.Users
	secret string
	now    func() time.Time
	log    *logger.Logger
	hooks  []SignupHook
}

func NewService(users repository.Users, secret string, log *logger.Logger) *Service {
	return &Service{users: users, secret: secret, now: time.Now, log: log}
}

// Enabled reports whether tokens are required at all.
func (s *Service) Enabled() bool { return s.secret != "" }

func (s *Service) Secret() string { return s.secret }

// OnSignup registers fn to run after every successful Signup.
func (s *Service) OnSignup(fn SignupHook) { s.hooks = append(s.hooks, fn) }

// Seed creates username with password unless the user already exists.
func (s *Service) Seed(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.users.FindUser(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	err = s.users.CreateUser(ctx, &domain.User{Username: username, PasswordHash: string(hash)})
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	s.log.Info("user_seeded", map[string]any{"username": username})
	return nil
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.FindUser(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(u.Username)
}

func (s *Service) IssueToken(username string) (string, error) {
	return GenerateToken(s.secret, username, s.now())
}

// Signup creates a new account. The account stays even if a hook fails; the
// hook error is returned so the caller can report it.
func (s *Service) Signup(ctx context.Context, username, password, confirm string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if len(username) > maxUsernameLen {
		return fmt.Errorf("%w: username is longer than %d characters", ErrInvalidInput, maxUsernameLen)
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	err = s.users.CreateUser(ctx, &domain.User{Username: username, PasswordHash: string(hash)})
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrUserExists
	}
	if err != nil {
		return err
	}
	s.log.Info("user_signed_up", map[string]any{"username": username})

	for _, h := range s.hooks {
		if err := h(ctx, username); err != nil {
			return fmt.Errorf("failed to set up account %s: %w", username, err)
		}
	}
	return nil
}

// ChangeCredentials renames username and/or changes its password after
// checking current. It returns a fresh token for the resulting username.
func (s *Service) ChangeCredentials(ctx context.Context, username, current, newUsername, newPassword string) (string, error) {
	u, err := s.users.FindUser(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return "", ErrInvalidCredentials
	}

	newUsername = strings.TrimSpace(newUsername)
	if newUsername == username {
		newUsername = ""
	}
	if newUsername == "" && newPassword == "" {
		return "", fmt.Errorf("%w: nothing to change", ErrInvalidInput)
	}
	if len(newUsername) > maxUsernameLen {
		return "", fmt.Errorf("%w: username is longer than %d characters", ErrInvalidInput, maxUsernameLen)
	}

	var hash string
	if newPassword != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		hash = string(b)
	}
	err = s.users.UpdateCredentials(ctx, username, newUsername, hash)
	if errors.Is(err, repository.ErrDuplicate) {
		return "", ErrUserExists
	}
	if err != nil {
		return "", err
	}

	final := username
	if newUsername != "" {
		final = newUsername
	}
	s.log.Info("credentials_changed", map[string]any{"username": final, "renamed": newUsername != "", "password_changed": hash != ""})
	return s.IssueToken(final)
}
