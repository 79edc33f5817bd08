package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
)

// AuthClient is the slice of the core API the session layer depends on.
type AuthClient interface {
	Login(ctx context.Context, phone, password string) (string, *domain.User, error)
	Register(ctx context.Context, phone, password string, role domain.Role) (string, *domain.User, error)
	Profile(ctx context.Context, token string) (*domain.User, error)
}

type credentials struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type registerRequest struct {
	Phone    string      `json:"phone"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

func (c *Client) Login(ctx context.Context, phone, password string) (string, *domain.User, error) {
	data, err := c.do(ctx, http.MethodPost, "/auth/login", "", nil, loginRequest{Phone: phone, Password: password})
	if err != nil {
		return "", nil, err
	}
	return decodeCredentials(data)
}

func (c *Client) Register(ctx context.Context, phone, password string, role domain.Role) (string, *domain.User, error) {
	data, err := c.do(ctx, http.MethodPost, "/auth/register", "", nil, registerRequest{Phone: phone, Password: password, Role: role})
	if err != nil {
		return "", nil, err
	}
	return decodeCredentials(data)
}

// Profile is the authoritative resolution of a stored credential. Callers
// must treat ErrUnauthorized as a dead session.
func (c *Client) Profile(ctx context.Context, token string) (*domain.User, error) {
	data, err := c.do(ctx, http.MethodGet, "/auth/profile", token, nil, nil)
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode profile failed: %w", err)
	}
	return &user, nil
}

func decodeCredentials(data json.RawMessage) (string, *domain.User, error) {
	var creds credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", nil, fmt.Errorf("decode credentials failed: %w", err)
	}
	if creds.Token == "" || creds.User == nil {
		return "", nil, fmt.Errorf("core api returned incomplete credentials")
	}
	return creds.Token, creds.User, nil
}
