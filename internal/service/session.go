package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/frostmag155/shop-frontend/internal/auth"
	"github.com/frostmag155/shop-frontend/internal/commerce"
	apperrors "github.com/frostmag155/shop-frontend/pkg/errors"
)

// Authenticator is the slice of the commerce client session handling needs.
// Register returns no identity; the upstream acknowledges the account with
// {success, message?} only.
type Authenticator interface {
	Login(ctx context.Context, creds commerce.Credentials) (*commerce.User, error)
	Register(ctx context.Context, creds commerce.Credentials) error
}

// Session is the storefront's signed-in state: the identity plus the session
// token handlers hand back to the client.
type Session struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// SessionService proxies login/register to the commerce API and mints the
// storefront's own session tokens. Handlers derive the shopper from the
// token; there is no ambient global auth state.
type SessionService struct {
	commerce Authenticator
	tokens   *auth.JWTManager
	logger   *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(commerce Authenticator, tokens *auth.JWTManager, logger *slog.Logger) *SessionService {
	return &SessionService{
		commerce: commerce,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login authenticates the shopper upstream and mints a session token.
func (s *SessionService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperrors.InvalidInput("email and password are required")
	}

	user, err := s.commerce.Login(ctx, commerce.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return s.mintSession(ctx, user)
}

// Register creates an account upstream and signs the shopper in immediately.
// The register endpoint only acknowledges the account, so the sign-in is a
// follow-up login with the same credentials.
func (s *SessionService) Register(ctx context.Context, name, secondName, email, password string) (*Session, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperrors.InvalidInput("name, email and password are required")
	}

	creds := commerce.Credentials{
		Name:       name,
		SecondName: secondName,
		Email:      email,
		Password:   password,
	}
	if err := s.commerce.Register(ctx, creds); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user, err := s.commerce.Login(ctx, commerce.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("post-register login: %w", err)
	}

	return s.mintSession(ctx, user)
}

func (s *SessionService) mintSession(ctx context.Context, user *commerce.User) (*Session, error) {
	userID := strconv.FormatInt(user.ID, 10)

	token, err := s.tokens.GenerateSessionToken(userID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("mint session token: %w", err)
	}

	s.logger.InfoContext(ctx, "session created",
		slog.String("user_id", userID),
	)

	return &Session{
		UserID: userID,
		Name:   user.Name,
		Email:  user.Email,
		Token:  token,
	}, nil
}
