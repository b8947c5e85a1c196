// Package services holds the business logic of the docme server: accounts,
// folder and document synchronization, and image storage URLs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/cryptox"
	"github.com/dmitrijs2005/docme/internal/server/auth"
	"github.com/dmitrijs2005/docme/internal/server/config"
	"github.com/dmitrijs2005/docme/internal/server/models"
	"github.com/dmitrijs2005/docme/internal/server/repositories/repomanager"
)

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	hashParams                  cryptox.HashParams
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		hashParams:                  cryptox.DefaultHashParams(),
	}
}

// Register creates an account. A taken user name is common.ErrConflict.
func (s *UserService) Register(ctx context.Context, req api.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	hash, err := cryptox.HashPassword([]byte(req.Password), s.hashParams)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		UserName:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues an access token. Unknown users
// and wrong passwords are both common.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, req api.LoginRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthorized
		}
		return "", err
	}

	ok, err := cryptox.VerifyPassword([]byte(req.Password), user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return "", common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.UserName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}

// Me returns the account behind userID. A deleted account invalidates the
// token, so it is common.ErrUnauthorized.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Authenticate resolves a bearer token to a user id.
func (s *UserService) Authenticate(token string) (string, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return "", common.ErrUnauthorized
	}
	return userID, nil
}
