package sdk

import (
	"context"
	"net/http"
	"time"
)

// SignUp is the account creation form
type SignUp struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
}

// Session is an authenticated session and the caller's profile
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Profile   Document  `json:"profile"`
}

// Account is the account and session API
type Account struct {
	client *Client
}

// Account returns the account API
func (c *Client) Account() *Account {
	return &Account{client: c}
}

// Create registers a new account and returns its profile document.
// A taken email yields an error matching ErrEmailInUse.
func (a *Account) Create(ctx context.Context, in SignUp) (*Document, error) {
	var profile Document
	if err := a.client.call(ctx, http.MethodPost, "/account", nil, in, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateSession signs in and makes the session current on the client
func (a *Account) CreateSession(ctx context.Context, email, password string) (*Session, error) {
	in := map[string]string{"email": email, "password": password}

	var session Session
	if err := a.client.call(ctx, http.MethodPost, "/account/sessions", nil, in, &session); err != nil {
		return nil, err
	}
	a.client.SetSession(session.Token)
	return &session, nil
}

// Get returns the signed-in caller's profile
func (a *Account) Get(ctx context.Context) (*Document, error) {
	var profile Document
	if err := a.client.call(ctx, http.MethodGet, "/account", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetUserStatus changes a user's role and/or active flag. Admin only.
func (a *Account) SetUserStatus(ctx context.Context, userID string, role *string, active *bool) (*Document, error) {
	in := map[string]interface{}{}
	if role != nil {
		in["role"] = *role
	}
	if active != nil {
		in["active"] = *active
	}

	var res mutationResponse
	if err := a.client.call(ctx, http.MethodPatch, pathJoin("users", userID, "status"), nil, in, &res); err != nil {
		return nil, err
	}
	return &res.Document, nil
}
