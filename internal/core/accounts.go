package core

import (
	"errors"
	"fmt"

	"voicejournal/internal/auth"
	"voicejournal/internal/store"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the slice of the store the account service needs.
type UserStore interface {
	GetUserByExternalID(externalUserID string) (*store.User, error)
	CreateUser(externalUserID, passwordHash string) (*store.User, error)
}

// AccountService handles signup, login and identity lookup. It stands in for
// the hosted auth collaborator at its boundary.
type AccountService struct {
	users  UserStore
	tokens *auth.Manager
}

func NewAccountService(users UserStore, tokens *auth.Manager) *AccountService {
	return &AccountService{users: users, tokens: tokens}
}

func (s *AccountService) Signup(externalUserID, password string) (*store.User, error) {
	existing, err := s.users.GetUserByExternalID(externalUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.CreateUser(externalUserID, hash)
}

// Login verifies credentials and issues a bearer token.
func (s *AccountService) Login(externalUserID, password string) (string, error) {
	user, err := s.users.GetUserByExternalID(externalUserID)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.GenerateToken(user.ExternalUserID)
}

// Authenticate resolves a bearer token to its user.
func (s *AccountService) Authenticate(token string) (*store.User, error) {
	externalUserID, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByExternalID(externalUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
