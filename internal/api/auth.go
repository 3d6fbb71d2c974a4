package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/sebakara/early-passion-detection/internal/types"
)

// tokenResponse is the body of a successful login.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. The endpoint takes the
// OAuth2 password form: form-encoded username and password, no bearer
// token attached.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	data, err := c.do(ctx, http.MethodPost, "/auth/login",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", false)
	if err != nil {
		return "", err
	}

	var tr tokenResponse
	if err := decodeInto(data, "/auth/login", &tr); err != nil {
		return "", err
	}
	return tr.AccessToken, nil
}

// Whoami returns the account owning the current token.
func (c *Client) Whoami(ctx context.Context) (*types.User, error) {
	var u types.User
	if err := c.getJSON(ctx, "/auth/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// registerResponse tolerates both response shapes: the user object alone,
// or a user plus an access token for backends that log the account in
// immediately.
type registerResponse struct {
	types.User
	AccessToken string `json:"access_token,omitempty"`
}

// Register creates an account. The returned token is "" when the backend
// requires a separate login (the common case); callers must treat that as
// registered-but-not-yet-credentialed, not as a failure.
func (c *Client) Register(ctx context.Context, in types.RegisterInput) (*types.User, string, error) {
	var rr registerResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/register", in, &rr, false); err != nil {
		return nil, "", err
	}
	u := rr.User
	return &u, rr.AccessToken, nil
}

// Logout invalidates the token server-side. Callers clear local state
// regardless of this call's outcome.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, "", true)
	return err
}
