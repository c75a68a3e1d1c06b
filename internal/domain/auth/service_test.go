package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	users     map[string]User
	lastLogin []string
}

func (f *fakeStore) FindActiveUserByEmail(_ context.Context, email string) (User, error) {
	user, ok := f.users[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeStore) UpdateLastLogin(_ context.Context, userID string) error {
	f.lastLogin = append(f.lastLogin, userID)
	return nil
}

func newFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	hash, err := HashPassword("approve-me")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	return &fakeStore{users: map[string]User{
		"principal@school.test": {ID: "u-1", SchoolID: "s-1", Email: "principal@school.test", RoleName: RolePrincipal, PasswordHash: hash},
	}}
}

func TestLoginIssuesToken(t *testing.T) {
	store := newFakeStore(t)
	svc := NewService(store, "secret", time.Hour)

	res, err := svc.Login(context.Background(), " principal@school.test ", "approve-me")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	claims, err := ParseToken("secret", res.Token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "u-1" || claims.SchoolID != "s-1" || claims.RoleName != RolePrincipal {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if res.ExpiresIn != 3600 {
		t.Fatalf("expected 3600s expiry, got %d", res.ExpiresIn)
	}
	if len(store.lastLogin) != 1 || store.lastLogin[0] != "u-1" {
		t.Fatalf("expected last login update, got %v", store.lastLogin)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := NewService(newFakeStore(t), "secret", time.Hour)
	if _, err := svc.Login(context.Background(), "principal@school.test", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc := NewService(newFakeStore(t), "secret", time.Hour)
	if _, err := svc.Login(context.Background(), "ghost@school.test", "approve-me"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}
