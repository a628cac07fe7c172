package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tableease/contracts/api"
	"tableease/internal/model"
)

// AuthAPI is the slice of the remote surface the session store needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Register(ctx context.Context, name, email, password, role string) (*model.User, error)
	UpdateProfile(ctx context.Context, token string, fields ProfileFields) (*model.User, error)
}

// NotificationAPI is the slice the notification store needs.
type NotificationAPI interface {
	ListNotifications(ctx context.Context, token string) ([]model.Notification, error)
	MarkRead(ctx context.Context, token string, id int) error
	MarkAllRead(ctx context.Context, token string) error
}

// ProfileFields carries a partial profile update. Nil fields are left
// untouched server-side.
type ProfileFields struct {
	Name      *string `json:"name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// APIClient talks to the REST surface using the {success, data,
// message} envelope and maps failure messages onto typed errors.
type APIClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *APIClient) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return nil, "", err
	}
	return &out.User, out.Token, nil
}

func (c *APIClient) Register(ctx context.Context, name, email, password, role string) (*model.User, error) {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     role,
	}
	var u model.User
	if err := c.call(ctx, http.MethodPost, "/api/auth/register", "", body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) UpdateProfile(ctx context.Context, token string, fields ProfileFields) (*model.User, error) {
	var u model.User
	if err := c.call(ctx, http.MethodPut, "/api/auth/profile", token, fields, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) ListNotifications(ctx context.Context, token string) ([]model.Notification, error) {
	var items []model.Notification
	if err := c.call(ctx, http.MethodGet, "/api/notifications", token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *APIClient) MarkRead(ctx context.Context, token string, id int) error {
	path := fmt.Sprintf("/api/notifications/%d/read", id)
	return c.call(ctx, http.MethodPut, path, token, nil, nil)
}

func (c *APIClient) MarkAllRead(ctx context.Context, token string) error {
	return c.call(ctx, http.MethodPut, "/api/notifications/read-all", token, nil, nil)
}

// call issues one request and decodes the envelope. A non-success
// envelope becomes a typed error where the message is recognized, a
// wrapped ErrRemoteWriteFailed/ErrRemoteFetchFailed otherwise.
func (c *APIClient) call(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", transportError(method), err)
	}
	defer resp.Body.Close()

	var env api.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decoding envelope: %v", transportError(method), err)
	}

	if !env.Success {
		return c.failureError(method, resp.StatusCode, env.Message)
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: decoding data: %v", transportError(method), err)
		}
	}
	return nil
}

func (c *APIClient) failureError(method string, status int, message string) error {
	switch message {
	case api.MsgEmailTaken:
		return ErrDuplicateEmail
	case api.MsgNameTaken:
		return ErrDuplicateName
	case api.MsgInvalidCredentials:
		return ErrInvalidCredentials
	case api.MsgNotAuthenticated:
		return ErrNotAuthenticated
	}

	c.logger.Warn("Remote call failed",
		zap.String("method", method),
		zap.Int("status", status),
		zap.String("message", message),
	)
	if message == "" {
		message = fmt.Sprintf("status %d", status)
	}
	return fmt.Errorf("%w: %s", transportError(method), message)
}

func transportError(method string) error {
	if method == http.MethodGet {
		return ErrRemoteFetchFailed
	}
	return ErrRemoteWriteFailed
}
