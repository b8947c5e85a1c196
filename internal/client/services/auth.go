// Package services contains the application services of the docme client:
// the document service used by the UI and the authentication service that
// manages the server session.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/client/client"
	"github.com/dmitrijs2005/docme/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// AuthService defines session operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and persist the bearer token.
//   - Register: create a new account on the server.
//   - Logout: forget the stored session. Local documents stay.
//   - IsAuthenticated: a token is stored and has not expired.
//   - Me: the account the stored token belongs to.
type AuthService interface {
	Register(ctx context.Context, req api.RegisterRequest) error
	Login(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) (bool, error)
	UserName(ctx context.Context) (string, error)
	Me(ctx context.Context) (*api.User, error)
	Ping(ctx context.Context) error
}

type authService struct {
	gateway client.Gateway
	meta    metadata.Repository
	now     func() time.Time
}

// NewAuthService constructs an AuthService bound to the given gateway and
// metadata store.
func NewAuthService(gateway client.Gateway, meta metadata.Repository) AuthService {
	return &authService{gateway: gateway, meta: meta, now: time.Now}
}

func (a *authService) Register(ctx context.Context, req api.RegisterRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := a.gateway.Register(ctx, req); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

// Login exchanges credentials for a token. password is wiped before
// returning.
func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	defer common.WipeBytes(password)

	token, err := a.gateway.Login(ctx, username, string(password))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.meta.Set(ctx, metadata.KeyAccessToken, []byte(token)); err != nil {
		return fmt.Errorf("token saving error: %w", err)
	}
	if err := a.meta.Set(ctx, metadata.KeyUserName, []byte(username)); err != nil {
		return fmt.Errorf("token saving error: %w", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.meta.Delete(ctx, metadata.KeyAccessToken); err != nil {
		return err
	}
	return a.meta.Delete(ctx, metadata.KeyUserName)
}

// IsAuthenticated checks the expiry of the stored token without verifying
// its signature; the server remains the judge of validity.
func (a *authService) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := metadata.GetString(ctx, a.meta, metadata.KeyAccessToken)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false, nil
	}
	if claims.ExpiresAt != nil && !a.now().Before(claims.ExpiresAt.Time) {
		return false, nil
	}
	return true, nil
}

func (a *authService) UserName(ctx context.Context) (string, error) {
	return metadata.GetString(ctx, a.meta, metadata.KeyUserName)
}

func (a *authService) Me(ctx context.Context) (*api.User, error) {
	u, err := a.gateway.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile error: %w", err)
	}
	return u, nil
}

// Ping proxies a liveness check to the gateway.
func (a *authService) Ping(ctx context.Context) error {
	return a.gateway.Ping(ctx)
}

// TokenStore serves the bearer token persisted by Login.
type TokenStore struct {
	meta metadata.Repository
}

var _ client.TokenProvider = (*TokenStore)(nil)

func NewTokenStore(meta metadata.Repository) *TokenStore {
	return &TokenStore{meta: meta}
}

func (s *TokenStore) AccessToken(ctx context.Context) (string, error) {
	token, err := metadata.GetString(ctx, s.meta, metadata.KeyAccessToken)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", common.ErrUnauthorized
	}
	return token, nil
}
