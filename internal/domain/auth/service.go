package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type Service struct {
	Store  StoreAPI
	Secret string
	TTL    time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TTL: ttl}
}

// Login checks the password and issues a bearer token. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	user, err := s.Store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, Claims{
		UserID:   user.ID,
		SchoolID: user.SchoolID,
		RoleName: user.RoleName,
	}, s.TTL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last login failed", "userId", user.ID, "err", err)
	}
	return LoginResult{
		Token:     token,
		ExpiresIn: int64(s.TTL.Seconds()),
		UserID:    user.ID,
		SchoolID:  user.SchoolID,
		Role:      user.RoleName,
	}, nil
}
