package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/elibrary/internal/client/api"
	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/dmitrijs2005/elibrary/internal/common"
)

var ErrMissingTokens = errors.New("login response without tokens")

// TokenSetter persists a freshly issued token pair.
type TokenSetter interface {
	Set(ctx context.Context, accessToken, refreshToken string) error
}

// AuthService covers registration, login, logout and identity lookup.
//
// Contract:
//   - LoginStudent/LoginAdmin: authenticate and persist the issued tokens
//     before returning the identity.
//   - Logout: ask the server to end the session. Callers clear local state
//     whatever the outcome.
//   - Me: return the identity bound to the current access token.
type AuthService interface {
	Register(ctx context.Context, reg models.Registration) (string, error)
	LoginStudent(ctx context.Context, email string, password []byte) (*models.User, error)
	LoginAdmin(ctx context.Context, username string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
}

type authService struct {
	doer   Doer
	tokens TokenSetter
}

func NewAuthService(doer Doer, tokens TokenSetter) AuthService {
	return &authService{doer: doer, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, reg models.Registration) (string, error) {
	return exec(ctx, s.doer, &api.Request{Method: http.MethodPost, Path: "/auth/register", Body: reg})
}

func (s *authService) LoginStudent(ctx context.Context, email string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)
	return s.login(ctx, "/auth/login/student", map[string]string{"email": email, "password": string(password)})
}

func (s *authService) LoginAdmin(ctx context.Context, username string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)
	return s.login(ctx, "/auth/login/admin", map[string]string{"username": username, "password": string(password)})
}

func (s *authService) login(ctx context.Context, path string, body map[string]string) (*models.User, error) {
	res, err := call[models.LoginResult](ctx, s.doer, &api.Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		return nil, ErrMissingTokens
	}
	if err := s.tokens.Set(ctx, res.AccessToken, res.RefreshToken); err != nil {
		return nil, fmt.Errorf("save tokens: %w", err)
	}
	return &res.User, nil
}

func (s *authService) Logout(ctx context.Context) error {
	_, err := exec(ctx, s.doer, &api.Request{Method: http.MethodPost, Path: "/auth/logout"})
	return err
}

func (s *authService) Me(ctx context.Context) (*models.User, error) {
	u, err := call[models.User](ctx, s.doer, &api.Request{Method: http.MethodGet, Path: "/auth/me"})
	if err != nil {
		return nil, err
	}
	return &u, nil
}
