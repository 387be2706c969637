package paygate

import (
	"context"
	"net/http"

	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/flowpayhq/flowpay/internal/core/ports"
)

type AuthService struct {
	*Client
}

func NewAuthService(client *Client) ports.AuthAPI {
	return &AuthService{client}
}

func (s *AuthService) GetMe(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := s.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) error {
	return s.do(ctx, http.MethodPost, "/auth/login", nil, creds, nil)
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (s *AuthService) ListProviders(ctx context.Context) ([]domain.AuthProvider, error) {
	var result struct {
		Providers []domain.AuthProvider `json:"providers"`
	}
	if err := s.do(ctx, http.MethodGet, "/auth/provider", nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Providers, nil
}
