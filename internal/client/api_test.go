package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tableease/contracts/api"
	"tableease/internal/model"
)

func envelopeHandler(t *testing.T, wantPath, wantToken string, status int, env api.Envelope) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantPath, r.URL.Path)
		if wantToken != "" {
			assert.Equal(t, "Bearer "+wantToken, r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(env)
	}
}

func dataEnvelope(t *testing.T, v any) api.Envelope {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return api.Envelope{Success: true, Data: raw}
}

func newTestAPIClient(srv *httptest.Server) *APIClient {
	return NewAPIClient(srv.URL, 2*time.Second, zap.NewNop())
}

func TestAPIClient_Login(t *testing.T) {
	t.Run("decodes user and token", func(t *testing.T) {
		srv := httptest.NewServer(envelopeHandler(t, "/api/auth/login", "", 200,
			dataEnvelope(t, map[string]any{
				"user":  model.User{ID: 7, Email: "a@x.com", Role: "customer"},
				"token": "tok-7",
			})))
		defer srv.Close()

		u, token, err := newTestAPIClient(srv).Login(context.Background(), "a@x.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, 7, u.ID)
		assert.Equal(t, "tok-7", token)
	})

	t.Run("maps the invalid-credentials message", func(t *testing.T) {
		srv := httptest.NewServer(envelopeHandler(t, "/api/auth/login", "", 401,
			api.Envelope{Success: false, Message: api.MsgInvalidCredentials}))
		defer srv.Close()

		_, _, err := newTestAPIClient(srv).Login(context.Background(), "a@x.com", "pw")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAPIClient_Register(t *testing.T) {
	t.Run("maps duplicate email", func(t *testing.T) {
		srv := httptest.NewServer(envelopeHandler(t, "/api/auth/register", "", 409,
			api.Envelope{Success: false, Message: api.MsgEmailTaken}))
		defer srv.Close()

		_, err := newTestAPIClient(srv).Register(context.Background(), "Alice", "a@x.com", "secret123", "customer")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("maps duplicate name", func(t *testing.T) {
		srv := httptest.NewServer(envelopeHandler(t, "/api/auth/register", "", 409,
			api.Envelope{Success: false, Message: api.MsgNameTaken}))
		defer srv.Close()

		_, err := newTestAPIClient(srv).Register(context.Background(), "Alice", "a@x.com", "secret123", "customer")
		assert.ErrorIs(t, err, ErrDuplicateName)
	})
}

func TestAPIClient_ListNotifications(t *testing.T) {
	t.Run("sends the bearer token", func(t *testing.T) {
		items := []model.Notification{{ID: 1, UserID: 7, Title: "Booking confirmed"}}
		srv := httptest.NewServer(envelopeHandler(t, "/api/notifications", "tok-7", 200,
			dataEnvelope(t, items)))
		defer srv.Close()

		got, err := newTestAPIClient(srv).ListNotifications(context.Background(), "tok-7")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 1, got[0].ID)
	})

	t.Run("unreachable server is a fetch failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := newTestAPIClient(srv).ListNotifications(context.Background(), "tok-7")
		assert.ErrorIs(t, err, ErrRemoteFetchFailed)
	})

	t.Run("missing token is not-authenticated", func(t *testing.T) {
		srv := httptest.NewServer(envelopeHandler(t, "/api/notifications", "", 401,
			api.Envelope{Success: false, Message: api.MsgNotAuthenticated}))
		defer srv.Close()

		_, err := newTestAPIClient(srv).ListNotifications(context.Background(), "")
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})
}

func TestAPIClient_MarkRead(t *testing.T) {
	t.Run("hits the per-notification path", func(t *testing.T) {
		srv := httptest.NewServer(envelopeHandler(t, "/api/notifications/42/read", "tok-7", 200,
			api.Envelope{Success: true}))
		defer srv.Close()

		assert.NoError(t, newTestAPIClient(srv).MarkRead(context.Background(), "tok-7", 42))
	})

	t.Run("unrecognized failure is a write failure", func(t *testing.T) {
		srv := httptest.NewServer(envelopeHandler(t, "/api/notifications/42/read", "tok-7", 500,
			api.Envelope{Success: false, Message: "database unavailable"}))
		defer srv.Close()

		err := newTestAPIClient(srv).MarkRead(context.Background(), "tok-7", 42)
		assert.ErrorIs(t, err, ErrRemoteWriteFailed)
	})
}
