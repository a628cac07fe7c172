package client

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tableease/internal/model"
)

// fakeAuthAPI is an in-memory identity set speaking the AuthAPI
// surface.
type fakeAuthAPI struct {
	users  map[string]*model.User // by email
	nextID int
}

func newFakeAuthAPI() *fakeAuthAPI {
	return &fakeAuthAPI{users: map[string]*model.User{}, nextID: 1}
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	u, ok := f.users[email]
	if !ok || password == "wrong" {
		return nil, "", ErrInvalidCredentials
	}
	copied := *u
	return &copied, fmt.Sprintf("token-%d", u.ID), nil
}

func (f *fakeAuthAPI) Register(ctx context.Context, name, email, password, role string) (*model.User, error) {
	if _, ok := f.users[email]; ok {
		return nil, ErrDuplicateEmail
	}
	for _, u := range f.users {
		if u.Name == name {
			return nil, ErrDuplicateName
		}
	}
	u := &model.User{ID: f.nextID, Name: name, Email: email, Role: role}
	f.nextID++
	f.users[email] = u
	copied := *u
	return &copied, nil
}

func (f *fakeAuthAPI) UpdateProfile(ctx context.Context, token string, fields ProfileFields) (*model.User, error) {
	for _, u := range f.users {
		if fmt.Sprintf("token-%d", u.ID) != token {
			continue
		}
		if fields.Name != nil {
			u.Name = *fields.Name
		}
		if fields.Phone != nil {
			u.Phone = *fields.Phone
		}
		if fields.AvatarURL != nil {
			u.AvatarURL = *fields.AvatarURL
		}
		copied := *u
		return &copied, nil
	}
	return nil, ErrNotAuthenticated
}

func newTestSession(t *testing.T) (*SessionStore, *fakeAuthAPI, *Cache) {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	api := newFakeAuthAPI()
	return NewSessionStore(api, cache, zap.NewNop()), api, cache
}

func TestSessionStore_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate email fails and leaves identity set unchanged", func(t *testing.T) {
		session, api, _ := newTestSession(t)

		_, err := session.Register(ctx, "Alice", "a@x.com", "secret123", "customer")
		require.NoError(t, err)

		_, err = session.Register(ctx, "Other", "a@x.com", "secret123", "customer")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.Len(t, api.users, 1)
	})

	t.Run("duplicate name fails and leaves identity set unchanged", func(t *testing.T) {
		session, api, _ := newTestSession(t)

		_, err := session.Register(ctx, "Alice", "a@x.com", "secret123", "customer")
		require.NoError(t, err)

		_, err = session.Register(ctx, "Alice", "b@x.com", "secret123", "customer")
		assert.ErrorIs(t, err, ErrDuplicateName)
		assert.Len(t, api.users, 1)
	})

	t.Run("registration does not activate a session", func(t *testing.T) {
		session, _, _ := newTestSession(t)

		_, err := session.Register(ctx, "Alice", "a@x.com", "secret123", "customer")
		require.NoError(t, err)
		assert.Nil(t, session.Current())
	})
}

func TestSessionStore_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("bad credentials fail", func(t *testing.T) {
		session, _, _ := newTestSession(t)

		_, err := session.Login(ctx, "nobody@x.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, session.Current())
	})

	t.Run("second login returns the same identity", func(t *testing.T) {
		session, _, _ := newTestSession(t)

		_, err := session.Register(ctx, "Alice", "a@x.com", "secret123", "customer")
		require.NoError(t, err)

		first, err := session.Login(ctx, "a@x.com", "secret123")
		require.NoError(t, err)

		second, err := session.Login(ctx, "a@x.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "customer", second.Role)
	})

	t.Run("session survives a restart", func(t *testing.T) {
		session, api, cache := newTestSession(t)

		_, err := session.Register(ctx, "Alice", "a@x.com", "secret123", "customer")
		require.NoError(t, err)
		u, err := session.Login(ctx, "a@x.com", "secret123")
		require.NoError(t, err)

		reloaded := NewSessionStore(api, cache, zap.NewNop())
		require.NoError(t, reloaded.Initialize())

		restored := reloaded.Current()
		require.NotNil(t, restored)
		assert.Equal(t, u.ID, restored.ID)
		assert.Equal(t, u.Email, restored.Email)
		assert.NotEmpty(t, reloaded.Token())
	})
}

func TestSessionStore_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("fails without a session", func(t *testing.T) {
		session, _, _ := newTestSession(t)

		name := "New Name"
		_, err := session.UpdateProfile(ctx, ProfileFields{Name: &name})
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("persists a shallow merge of the supplied fields", func(t *testing.T) {
		session, api, cache := newTestSession(t)

		_, err := session.Register(ctx, "Alice", "a@x.com", "secret123", "customer")
		require.NoError(t, err)
		_, err = session.Login(ctx, "a@x.com", "secret123")
		require.NoError(t, err)

		phone := "555-0100"
		_, err = session.UpdateProfile(ctx, ProfileFields{Phone: &phone})
		require.NoError(t, err)

		name := "Alicia"
		u, err := session.UpdateProfile(ctx, ProfileFields{Name: &name})
		require.NoError(t, err)

		// Each update merges over the previous state.
		assert.Equal(t, "Alicia", u.Name)
		assert.Equal(t, "555-0100", u.Phone)
		assert.Equal(t, "a@x.com", u.Email)

		reloaded := NewSessionStore(api, cache, zap.NewNop())
		require.NoError(t, reloaded.Initialize())
		restored := reloaded.Current()
		require.NotNil(t, restored)
		assert.Equal(t, "Alicia", restored.Name)
		assert.Equal(t, "555-0100", restored.Phone)
	})
}

func TestSessionStore_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		session, _, _ := newTestSession(t)

		_, err := session.Register(ctx, "Alice", "a@x.com", "secret123", "customer")
		require.NoError(t, err)
		_, err = session.Login(ctx, "a@x.com", "secret123")
		require.NoError(t, err)

		require.NoError(t, session.Logout())
		assert.Nil(t, session.Current())
		assert.Empty(t, session.Token())

		require.NoError(t, session.Logout())
		assert.Nil(t, session.Current())
	})

	t.Run("clears the durable cache", func(t *testing.T) {
		session, api, cache := newTestSession(t)

		_, err := session.Register(ctx, "Alice", "a@x.com", "secret123", "customer")
		require.NoError(t, err)
		_, err = session.Login(ctx, "a@x.com", "secret123")
		require.NoError(t, err)
		require.NoError(t, session.Logout())

		reloaded := NewSessionStore(api, cache, zap.NewNop())
		require.NoError(t, reloaded.Initialize())
		assert.Nil(t, reloaded.Current())
	})
}

func TestSessionStore_OnChange(t *testing.T) {
	ctx := context.Background()

	session, _, _ := newTestSession(t)

	var seen []*model.User
	session.OnChange(func(u *model.User) { seen = append(seen, u) })

	_, err := session.Register(ctx, "Alice", "a@x.com", "secret123", "customer")
	require.NoError(t, err)
	_, err = session.Login(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, session.Logout())

	require.Len(t, seen, 2)
	assert.NotNil(t, seen[0])
	assert.Nil(t, seen[1])
}
