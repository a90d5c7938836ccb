package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubStore struct {
	user      AuthUser
	lastLogin string
}

func (s *stubStore) FindActiveUserByUsername(_ context.Context, username string) (AuthUser, error) {
	if username != s.user.Username {
		return AuthUser{}, ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubStore) UpdateLastLogin(_ context.Context, userID string) error {
	s.lastLogin = userID
	return nil
}

func (s *stubStore) HasPermission(context.Context, string, string) (bool, error) { return true, nil }

func (s *stubStore) Profile(context.Context, string) (Profile, error) { return Profile{}, nil }

func TestLogin(t *testing.T) {
	hash, err := HashPassword("pa55word")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	store := &stubStore{user: AuthUser{ID: "u1", Username: "admin", RoleID: "r1", RoleName: RoleAdmin, Password: hash}}
	svc := NewService(store, "secret", time.Hour)

	result, err := svc.Login(context.Background(), "admin", "pa55word")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	claims, err := ParseToken("secret", result.Token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "u1" || claims.RoleName != RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if store.lastLogin != "u1" {
		t.Fatal("expected last login to be recorded")
	}

	if _, err := svc.Login(context.Background(), "admin", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ghost", "pa55word"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
}
