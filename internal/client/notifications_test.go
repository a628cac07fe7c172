package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tableease/internal/model"
)

// fakeNotificationAPI serves a canned snapshot and records mutation
// calls. gate, when set, blocks ListNotifications until released.
type fakeNotificationAPI struct {
	mu        sync.Mutex
	snapshot  []model.Notification
	listErr   error
	markErr   error
	markCalls []int
	markAll   int
	listCalls int
	gate      chan struct{}
}

func (f *fakeNotificationAPI) ListNotifications(ctx context.Context, token string) ([]model.Notification, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Notification, len(f.snapshot))
	copy(out, f.snapshot)
	return out, nil
}

func (f *fakeNotificationAPI) MarkRead(ctx context.Context, token string, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls = append(f.markCalls, id)
	return f.markErr
}

func (f *fakeNotificationAPI) MarkAllRead(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markAll++
	return f.markErr
}

// fakeSubscriber hands out one channel per Subscribe call and records
// closer invocations.
type fakeSubscriber struct {
	mu       sync.Mutex
	channels []chan model.Notification
	closed   []bool
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, userID int) (<-chan model.Notification, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan model.Notification, 16)
	idx := len(f.channels)
	f.channels = append(f.channels, ch)
	f.closed = append(f.closed, false)
	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.closed[idx] {
			f.closed[idx] = true
			close(ch)
		}
	}, nil
}

func (f *fakeSubscriber) emit(idx int, n model.Notification) {
	f.mu.Lock()
	ch := f.channels[idx]
	closed := f.closed[idx]
	f.mu.Unlock()
	if !closed {
		ch <- n
	}
}

func notif(id int, createdAt time.Time, read bool) model.Notification {
	return model.Notification{
		ID:        id,
		UserID:    1,
		Title:     "Booking confirmed",
		Message:   "table for two",
		IsRead:    read,
		CreatedAt: createdAt,
	}
}

func ids(items []model.Notification) []int {
	out := make([]int, len(items))
	for i, n := range items {
		out[i] = n.ID
	}
	return out
}

// waitFor polls until cond holds or the deadline passes. Push events
// are delivered on a separate goroutine, so assertions on them need a
// grace window.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, cond())
}

func newTestStore(api *fakeNotificationAPI, sub *fakeSubscriber) *NotificationStore {
	return NewNotificationStore(api, sub, zap.NewNop()).
		WithRetryPolicy(1, time.Millisecond)
}

func TestNotificationStore_InitialFetchAndPush(t *testing.T) {
	t0 := time.Now().Add(-2 * time.Hour)
	t1 := t0.Add(time.Hour)
	t2 := t1.Add(time.Hour)

	api := &fakeNotificationAPI{snapshot: []model.Notification{
		notif(1, t1, false),
		notif(2, t0, false),
	}}
	sub := &fakeSubscriber{}
	store := newTestStore(api, sub)
	defer store.Close()

	u := &model.User{ID: 1, Email: "a@x.com", Role: "customer"}
	store.SetIdentity(context.Background(), u, "token-1")

	assert.Equal(t, StateReady, store.CurrentState())
	assert.Equal(t, []int{1, 2}, ids(store.Notifications()))
	assert.Equal(t, 2, store.Unread())

	sub.emit(0, notif(3, t2, false))

	waitFor(t, func() bool { return store.Unread() == 3 })
	assert.Equal(t, []int{3, 1, 2}, ids(store.Notifications()))
}

func TestNotificationStore_PushDuringFetchIsMerged(t *testing.T) {
	t0 := time.Now().Add(-time.Hour)
	t1 := time.Now()

	api := &fakeNotificationAPI{
		snapshot: []model.Notification{notif(1, t0, false)},
		gate:     make(chan struct{}),
	}
	sub := &fakeSubscriber{}
	store := newTestStore(api, sub)
	defer store.Close()

	u := &model.User{ID: 1, Email: "a@x.com", Role: "customer"}

	done := make(chan struct{})
	go func() {
		store.SetIdentity(context.Background(), u, "token-1")
		close(done)
	}()

	// The subscription is armed before the fetch, so an insert that
	// lands mid-fetch must not be lost.
	waitFor(t, func() bool {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		return len(sub.channels) == 1
	})
	sub.emit(0, notif(2, t1, false))
	waitFor(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.buffer) == 1
	})

	close(api.gate)
	<-done

	assert.Equal(t, StateReady, store.CurrentState())
	assert.Equal(t, []int{2, 1}, ids(store.Notifications()))
	assert.Equal(t, 2, store.Unread())
}

func TestNotificationStore_PushDuplicateOfSnapshotIsDropped(t *testing.T) {
	t0 := time.Now()

	api := &fakeNotificationAPI{snapshot: []model.Notification{notif(1, t0, false)}}
	sub := &fakeSubscriber{}
	store := newTestStore(api, sub)
	defer store.Close()

	store.SetIdentity(context.Background(), &model.User{ID: 1}, "token-1")
	require.Equal(t, 1, store.Unread())

	sub.emit(0, notif(1, t0, false))

	// Give the delivery goroutine time to (not) apply the duplicate.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []int{1}, ids(store.Notifications()))
	assert.Equal(t, 1, store.Unread())
}

func TestNotificationStore_MarkAsRead(t *testing.T) {
	t.Run("idempotent and floored at zero", func(t *testing.T) {
		api := &fakeNotificationAPI{snapshot: []model.Notification{
			notif(1, time.Now(), false),
		}}
		store := newTestStore(api, &fakeSubscriber{})
		defer store.Close()

		store.SetIdentity(context.Background(), &model.User{ID: 1}, "token-1")
		require.Equal(t, 1, store.Unread())

		store.MarkAsRead(context.Background(), 1)
		store.MarkAsRead(context.Background(), 1)
		store.Wait()

		assert.Equal(t, 0, store.Unread())
		assert.True(t, store.Notifications()[0].IsRead)
		assert.Equal(t, []int{1}, api.markCalls)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		api := &fakeNotificationAPI{snapshot: []model.Notification{
			notif(1, time.Now(), false),
		}}
		store := newTestStore(api, &fakeSubscriber{})
		defer store.Close()

		store.SetIdentity(context.Background(), &model.User{ID: 1}, "token-1")
		store.MarkAsRead(context.Background(), 99)
		store.Wait()

		assert.Equal(t, 1, store.Unread())
		assert.Empty(t, api.markCalls)
	})

	t.Run("reverts when the remote write fails", func(t *testing.T) {
		api := &fakeNotificationAPI{
			snapshot: []model.Notification{notif(1, time.Now(), false)},
			markErr:  ErrRemoteWriteFailed,
		}
		store := newTestStore(api, &fakeSubscriber{})
		defer store.Close()

		store.SetIdentity(context.Background(), &model.User{ID: 1}, "token-1")
		store.MarkAsRead(context.Background(), 1)
		store.Wait()

		assert.Equal(t, 1, store.Unread())
		assert.False(t, store.Notifications()[0].IsRead)
	})
}

func TestNotificationStore_MarkAllAsRead(t *testing.T) {
	t.Run("clears every unread entry", func(t *testing.T) {
		now := time.Now()
		api := &fakeNotificationAPI{snapshot: []model.Notification{
			notif(3, now, false),
			notif(2, now.Add(-time.Hour), true),
			notif(1, now.Add(-2*time.Hour), false),
		}}
		store := newTestStore(api, &fakeSubscriber{})
		defer store.Close()

		store.SetIdentity(context.Background(), &model.User{ID: 1}, "token-1")
		require.Equal(t, 2, store.Unread())

		store.MarkAllAsRead(context.Background())
		store.Wait()

		assert.Equal(t, 0, store.Unread())
		for _, n := range store.Notifications() {
			assert.True(t, n.IsRead)
		}
		assert.Equal(t, 1, api.markAll)
	})

	t.Run("nothing unread skips the remote call", func(t *testing.T) {
		api := &fakeNotificationAPI{snapshot: []model.Notification{
			notif(1, time.Now(), true),
		}}
		store := newTestStore(api, &fakeSubscriber{})
		defer store.Close()

		store.SetIdentity(context.Background(), &model.User{ID: 1}, "token-1")
		store.MarkAllAsRead(context.Background())
		store.Wait()

		assert.Equal(t, 0, api.markAll)
	})

	t.Run("reverts the flipped entries when the remote write fails", func(t *testing.T) {
		now := time.Now()
		api := &fakeNotificationAPI{
			snapshot: []model.Notification{
				notif(2, now, false),
				notif(1, now.Add(-time.Hour), true),
			},
			markErr: ErrRemoteWriteFailed,
		}
		store := newTestStore(api, &fakeSubscriber{})
		defer store.Close()

		store.SetIdentity(context.Background(), &model.User{ID: 1}, "token-1")
		store.MarkAllAsRead(context.Background())
		store.Wait()

		assert.Equal(t, 1, store.Unread())
		items := store.Notifications()
		assert.False(t, items[0].IsRead)
		assert.True(t, items[1].IsRead)
	})
}

func TestNotificationStore_IdentitySwitchDropsStaleEvents(t *testing.T) {
	api := &fakeNotificationAPI{}
	sub := &fakeSubscriber{}
	store := newTestStore(api, sub)
	defer store.Close()

	store.SetIdentity(context.Background(), &model.User{ID: 1}, "token-1")
	store.SetIdentity(context.Background(), &model.User{ID: 2}, "token-2")

	sub.mu.Lock()
	firstClosed := sub.closed[0]
	sub.mu.Unlock()
	assert.True(t, firstClosed, "previous subscription must be torn down")

	// An event scoped to the first identity must not leak through.
	sub.emit(0, notif(10, time.Now(), false))
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, store.Notifications())
	assert.Equal(t, 0, store.Unread())
}

func TestNotificationStore_ClearIdentityGoesIdle(t *testing.T) {
	api := &fakeNotificationAPI{snapshot: []model.Notification{
		notif(1, time.Now(), false),
	}}
	sub := &fakeSubscriber{}
	store := newTestStore(api, sub)
	defer store.Close()

	store.SetIdentity(context.Background(), &model.User{ID: 1}, "token-1")
	require.Equal(t, 1, store.Unread())

	store.SetIdentity(context.Background(), nil, "")

	assert.Equal(t, StateIdle, store.CurrentState())
	assert.Empty(t, store.Notifications())
	assert.Equal(t, 0, store.Unread())

	sub.mu.Lock()
	closed := sub.closed[0]
	sub.mu.Unlock()
	assert.True(t, closed)
}

func TestNotificationStore_FetchFailureRetriesThenEmpty(t *testing.T) {
	api := &fakeNotificationAPI{listErr: ErrRemoteFetchFailed}
	store := newTestStore(api, &fakeSubscriber{}).WithRetryPolicy(2, time.Millisecond)
	defer store.Close()

	store.SetIdentity(context.Background(), &model.User{ID: 1}, "token-1")

	assert.Equal(t, StateReady, store.CurrentState())
	assert.Empty(t, store.Notifications())
	assert.ErrorIs(t, store.LastError(), ErrRemoteFetchFailed)
	assert.Equal(t, 3, api.listCalls)
}

func TestMergeByID(t *testing.T) {
	now := time.Now()
	snapshot := []model.Notification{
		notif(2, now.Add(-time.Minute), false),
		notif(1, now.Add(-time.Hour), true),
	}
	buffered := []model.Notification{
		notif(3, now, false),
		notif(2, now.Add(-time.Minute), false), // duplicate
	}

	merged := mergeByID(snapshot, buffered)
	assert.Equal(t, []int{3, 2, 1}, ids(merged))
	assert.Equal(t, 2, countUnread(merged))
}
