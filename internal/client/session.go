package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/karkkilista/internal/api"
	"github.com/mmynk/karkkilista/internal/models"
)

// ErrSessionRejected is returned by Resume when the server no longer accepts
// the saved token.
var ErrSessionRejected = errors.New("session rejected")

// Register creates an account and its list, then signs in as it.
func (c *Client) Register(ctx context.Context, email, password, username string) (*models.Identity, error) {
	resp, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:    email,
		Password: password,
		Username: username,
	}))
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	return c.setSession(resp.Msg.User, resp.Msg.Token), nil
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	resp, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    email,
		Password: password,
	}))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return c.setSession(resp.Msg.User, resp.Msg.Token), nil
}

// Logout ends the session. The local session is cleared even when the
// server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}

	_, err := c.auth.Logout(ctx, connect.NewRequest(&api.LogoutRequest{}))
	c.clearSession()
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Resume restores a session from a token saved earlier. An expired or
// unknown token signs the client out and returns ErrSessionRejected. Any other
// failure, such as an unreachable server, leaves the session as it was.
func (c *Client) Resume(ctx context.Context, token string) (*models.Identity, error) {
	req := connect.NewRequest(&api.GetCurrentUserRequest{})
	req.Header().Set("Authorization", "Bearer "+token)

	resp, err := c.auth.GetCurrentUser(ctx, req)
	if connect.CodeOf(err) == connect.CodeUnauthenticated {
		c.clearSession()
		return nil, fmt.Errorf("resume session: %w: %w", ErrSessionRejected, err)
	}
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}

	return c.setSession(resp.Msg.User, token), nil
}

// Identity returns the signed-in identity, or nil when signed out.
func (c *Client) Identity() *models.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.identity == nil {
		return nil
	}
	id := *c.identity
	return &id
}

// Token returns the bearer token of the session, or "" when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnIdentityChange calls fn with the current identity right away and again
// after every sign-in and sign-out. The returned function stops the calls.
func (c *Client) OnIdentityChange(fn func(*models.Identity)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	fn(c.Identity())

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) setSession(user api.User, token string) *models.Identity {
	identity := &models.Identity{ID: user.ID, Email: user.Email}

	c.mu.Lock()
	c.identity = identity
	c.token = token
	c.mu.Unlock()

	slog.Debug("Session started", "user_id", user.ID)
	c.notifyIdentity()
	return c.Identity()
}

func (c *Client) clearSession() {
	c.mu.Lock()
	changed := c.identity != nil || c.token != ""
	c.identity = nil
	c.token = ""
	c.mu.Unlock()

	if changed {
		slog.Debug("Session ended")
		c.notifyIdentity()
	}
}

func (c *Client) notifyIdentity() {
	c.mu.RLock()
	fns := make([]func(*models.Identity), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()

	for _, fn := range fns {
		fn(c.Identity())
	}
}
