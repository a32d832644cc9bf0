package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	Store    *Store
	Secret   string
	TokenTTL time.Duration
}

func NewService(store *Store, secret string) *Service {
	return &Service{Store: store, Secret: secret, TokenTTL: 12 * time.Hour}
}

func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	user, err := s.Store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", User{}, ErrInvalidCredentials
		}
		return "", User{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, Claims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
	}, s.TokenTTL)
	if err != nil {
		return "", User{}, err
	}

	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		return "", User{}, err
	}
	return token, user, nil
}
