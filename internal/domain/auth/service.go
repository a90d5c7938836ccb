package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type StoreAPI interface {
	FindActiveUserByUsername(ctx context.Context, username string) (AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
	Profile(ctx context.Context, userID string) (Profile, error)
}

type Service struct {
	Store    StoreAPI
	Secret   string
	TokenTTL time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TokenTTL: ttl}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
}

// Login checks the credentials and issues a bearer token. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.Store.FindActiveUserByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, Claims{
		UserID:       user.ID,
		RoleID:       user.RoleID,
		RoleName:     user.RoleName,
		DepartmentID: user.DepartmentID,
	}, s.TokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last login failed", "err", err, "userId", user.ID)
	}
	return LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.TokenTTL),
		UserID:    user.ID,
		Role:      user.RoleName,
	}, nil
}

func (s *Service) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	return s.Store.HasPermission(ctx, roleID, permission)
}

func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	return s.Store.Profile(ctx, userID)
}
