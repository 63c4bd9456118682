package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"notesapi/internal/model"
	"notesapi/internal/repository"
	"notesapi/internal/token"
)

var (
	// ErrDuplicateUser is returned when registering an email that already has an account.
	ErrDuplicateUser = errors.New("user already exists with this email")
	// ErrInvalidCredentials covers both unknown email and wrong password, so a
	// caller cannot distinguish the two and enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// RegisterInput holds the fields required to create an account.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	University string
}

// AuthResult is returned by both registration and login: a signed bearer
// token plus the public profile projection (password excluded).
type AuthResult struct {
	Token string        `json:"token"`
	User  model.Profile `json:"user"`
}

// AuthService defines the use cases for account registration and login.
type AuthService interface {
	// Register creates an account with a bcrypt-hashed password and issues a token.
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)

	// Login verifies credentials against the stored hash and issues a token.
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *token.Service
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *token.Service) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	// Exact-match pre-check; the unique index on email backs it up.
	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrDuplicateUser
	case errors.Is(err, sql.ErrNoRows):
		// new account
	default:
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &model.User{
		ID:         uuid.New().String(),
		Name:       in.Name,
		Email:      in.Email,
		Password:   string(hashed),
		University: in.University,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.result(created)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.result(user)
}

func (s *authService) result(user *model.User) (*AuthResult, error) {
	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: tok, User: user.Profile()}, nil
}
