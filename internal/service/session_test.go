package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/frostmag155/shop-frontend/internal/auth"
	"github.com/frostmag155/shop-frontend/internal/commerce"
	apperrors "github.com/frostmag155/shop-frontend/pkg/errors"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Login(ctx context.Context, creds commerce.Credentials) (*commerce.User, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.User), args.Error(1)
}

func (m *mockAuthenticator) Register(ctx context.Context, creds commerce.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

func newTestSessionService(authn *mockAuthenticator) (*SessionService, *auth.JWTManager) {
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	return NewSessionService(authn, tokens, newTestLogger()), tokens
}

func TestLogin_MintsVerifiableToken(t *testing.T) {
	authn := new(mockAuthenticator)
	svc, tokens := newTestSessionService(authn)
	ctx := context.Background()

	authn.On("Login", ctx, commerce.Credentials{Email: "ivan@example.com", Password: "secret"}).
		Return(&commerce.User{ID: 42, Name: "Ivan", Email: "ivan@example.com"}, nil)

	session, err := svc.Login(ctx, "ivan@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "42", session.UserID)
	assert.Equal(t, "Ivan", session.Name)

	claims, err := tokens.ValidateSessionToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "ivan@example.com", claims.Email)
}

func TestLogin_MissingCredentials(t *testing.T) {
	svc, _ := newTestSessionService(new(mockAuthenticator))

	_, err := svc.Login(context.Background(), "", "secret")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.Login(context.Background(), "ivan@example.com", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestLogin_UpstreamRejection(t *testing.T) {
	authn := new(mockAuthenticator)
	svc, _ := newTestSessionService(authn)
	ctx := context.Background()

	authn.On("Login", ctx, mock.AnythingOfType("commerce.Credentials")).
		Return(nil, apperrors.Unauthorized("invalid credentials"))

	_, err := svc.Login(ctx, "ivan@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRegister_SignsShopperInViaFollowUpLogin(t *testing.T) {
	authn := new(mockAuthenticator)
	svc, tokens := newTestSessionService(authn)
	ctx := context.Background()

	authn.On("Register", ctx, commerce.Credentials{Name: "Ivan", SecondName: "Petrov", Email: "ivan@example.com", Password: "secret"}).
		Return(nil)
	authn.On("Login", ctx, commerce.Credentials{Email: "ivan@example.com", Password: "secret"}).
		Return(&commerce.User{ID: 7, Name: "Ivan", Email: "ivan@example.com"}, nil)

	session, err := svc.Register(ctx, "Ivan", "Petrov", "ivan@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "7", session.UserID)

	_, err = tokens.ValidateSessionToken(session.Token)
	assert.NoError(t, err)
	authn.AssertExpectations(t)
}

func TestRegister_UpstreamRejectionSkipsLogin(t *testing.T) {
	authn := new(mockAuthenticator)
	svc, _ := newTestSessionService(authn)
	ctx := context.Background()

	authn.On("Register", ctx, mock.AnythingOfType("commerce.Credentials")).
		Return(apperrors.UpstreamRejected("email already taken"))

	_, err := svc.Register(ctx, "Ivan", "", "ivan@example.com", "secret")
	assert.ErrorIs(t, err, apperrors.ErrRejected)
	authn.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _ := newTestSessionService(new(mockAuthenticator))

	_, err := svc.Register(context.Background(), "", "", "ivan@example.com", "secret")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
