package client

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"tableease/internal/model"
	"tableease/pkg/circuitbreaker"
)

// State of the notification store for the current identity.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Subscriber opens a live channel of notification inserts scoped to
// one user. The returned closer tears the channel down.
type Subscriber interface {
	Subscribe(ctx context.Context, userID int) (<-chan model.Notification, func(), error)
}

// NotificationStore keeps a locally cached, descending-recency view of
// the active identity's notifications. Push events arriving while the
// initial fetch is in flight are buffered and merged by id once the
// fetch lands, so neither side of the race can drop the other's rows.
type NotificationStore struct {
	api     NotificationAPI
	sub     Subscriber
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger

	retries int
	backoff time.Duration

	mu         sync.Mutex
	state      State
	items      []model.Notification
	buffer     []model.Notification
	unread     int
	userID     int
	token      string
	generation int
	closer     func()
	lastErr    error

	pending sync.WaitGroup
}

func NewNotificationStore(api NotificationAPI, sub Subscriber, logger *zap.Logger) *NotificationStore {
	return &NotificationStore{
		api:     api,
		sub:     sub,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:  logger,
		retries: 3,
		backoff: 250 * time.Millisecond,
	}
}

// WithRetryPolicy overrides the fetch retry count and initial backoff.
func (n *NotificationStore) WithRetryPolicy(retries int, backoff time.Duration) *NotificationStore {
	n.retries = retries
	n.backoff = backoff
	return n
}

// BindSession re-targets the store whenever the session identity
// changes. The session's listeners run synchronously, so by the time
// Login returns the store is already loading for the new identity.
func (n *NotificationStore) BindSession(ctx context.Context, session *SessionStore) {
	session.OnChange(func(u *model.User) {
		n.SetIdentity(ctx, u, session.Token())
	})
}

// SetIdentity tears down the previous subscription and re-targets the
// store at u. A nil identity empties the store.
func (n *NotificationStore) SetIdentity(ctx context.Context, u *model.User, token string) {
	n.mu.Lock()
	n.generation++
	gen := n.generation
	closer := n.closer
	n.closer = nil
	n.items = nil
	n.buffer = nil
	n.unread = 0
	n.lastErr = nil

	if u == nil {
		n.state = StateIdle
		n.userID = 0
		n.token = ""
		n.mu.Unlock()
		if closer != nil {
			closer()
		}
		return
	}

	n.state = StateLoading
	n.userID = u.ID
	n.token = token
	n.mu.Unlock()

	if closer != nil {
		closer()
	}

	// Arm the subscription before fetching so inserts written during
	// the fetch window land in the buffer instead of vanishing.
	ch, stop, err := n.sub.Subscribe(ctx, u.ID)
	if err != nil {
		n.logger.Warn("Live subscription unavailable", zap.Int("user_id", u.ID), zap.Error(err))
	} else {
		n.mu.Lock()
		if gen == n.generation {
			n.closer = stop
		} else {
			n.mu.Unlock()
			stop()
			return
		}
		n.mu.Unlock()

		go func() {
			for ev := range ch {
				n.ingest(gen, ev)
			}
		}()
	}

	snapshot, fetchErr := n.fetchInitial(ctx, token)
	if fetchErr != nil {
		n.logger.Error("Initial notification fetch failed",
			zap.Int("user_id", u.ID), zap.Error(fetchErr))
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.generation {
		return
	}

	merged := mergeByID(snapshot, n.buffer)
	n.items = merged
	n.buffer = nil
	n.unread = countUnread(merged)
	n.state = StateReady
	n.lastErr = fetchErr
}

// fetchInitial pulls the snapshot with bounded retries behind the
// circuit breaker. Backoff doubles per attempt.
func (n *NotificationStore) fetchInitial(ctx context.Context, token string) ([]model.Notification, error) {
	var snapshot []model.Notification
	var lastErr error

	delay := n.backoff
	for attempt := 0; attempt <= n.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		lastErr = n.breaker.Execute(func() error {
			items, err := n.api.ListNotifications(ctx, token)
			if err != nil {
				return err
			}
			snapshot = items
			return nil
		})
		if lastErr == nil {
			return snapshot, nil
		}
	}
	return nil, lastErr
}

// ingest handles one push event. Events from a superseded identity
// are dropped by generation check.
func (n *NotificationStore) ingest(gen int, ev model.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if gen != n.generation {
		return
	}

	switch n.state {
	case StateLoading:
		n.buffer = append(n.buffer, ev)
	case StateReady:
		for _, existing := range n.items {
			if existing.ID == ev.ID {
				return
			}
		}
		n.items = append([]model.Notification{ev}, n.items...)
		if !ev.IsRead {
			n.unread++
		}
	}
}

// MarkAsRead optimistically flips the entry and confirms the mutation
// remotely. A failed confirm rolls the optimistic change back.
func (n *NotificationStore) MarkAsRead(ctx context.Context, id int) {
	n.mu.Lock()
	gen := n.generation
	token := n.token
	var target *model.Notification
	for i := range n.items {
		if n.items[i].ID == id {
			target = &n.items[i]
			break
		}
	}
	if target == nil || target.IsRead {
		n.mu.Unlock()
		return
	}
	target.IsRead = true
	if n.unread > 0 {
		n.unread--
	}
	n.mu.Unlock()

	n.pending.Add(1)
	go func() {
		defer n.pending.Done()
		err := n.api.MarkRead(ctx, token, id)
		if err == nil {
			return
		}
		n.logger.Warn("Mark-as-read rejected remotely, reverting",
			zap.Int("notification_id", id), zap.Error(err))

		n.mu.Lock()
		defer n.mu.Unlock()
		if gen != n.generation {
			return
		}
		for i := range n.items {
			if n.items[i].ID == id {
				n.items[i].IsRead = false
				n.unread++
				return
			}
		}
	}()
}

// MarkAllAsRead optimistically clears the unread set. On remote
// failure the previously-unread entries are reverted.
func (n *NotificationStore) MarkAllAsRead(ctx context.Context) {
	n.mu.Lock()
	gen := n.generation
	token := n.token
	var flipped []int
	for i := range n.items {
		if !n.items[i].IsRead {
			n.items[i].IsRead = true
			flipped = append(flipped, n.items[i].ID)
		}
	}
	n.unread = 0
	n.mu.Unlock()

	if len(flipped) == 0 {
		return
	}

	n.pending.Add(1)
	go func() {
		defer n.pending.Done()
		err := n.api.MarkAllRead(ctx, token)
		if err == nil {
			return
		}
		n.logger.Warn("Mark-all-as-read rejected remotely, reverting", zap.Error(err))

		n.mu.Lock()
		defer n.mu.Unlock()
		if gen != n.generation {
			return
		}
		for _, id := range flipped {
			for i := range n.items {
				if n.items[i].ID == id {
					n.items[i].IsRead = false
					n.unread++
					break
				}
			}
		}
	}()
}

// Notifications returns a copy of the current list, newest first.
func (n *NotificationStore) Notifications() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.Notification, len(n.items))
	copy(out, n.items)
	return out
}

// Unread returns the current unread count.
func (n *NotificationStore) Unread() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.unread
}

// CurrentState reports where the store is in its lifecycle.
func (n *NotificationStore) CurrentState() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// LastError returns the error from the most recent initial fetch, nil
// when it succeeded.
func (n *NotificationStore) LastError() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastErr
}

// Wait blocks until all in-flight remote confirmations settle.
func (n *NotificationStore) Wait() {
	n.pending.Wait()
}

// Close tears down the live subscription.
func (n *NotificationStore) Close() {
	n.mu.Lock()
	n.generation++
	closer := n.closer
	n.closer = nil
	n.state = StateIdle
	n.mu.Unlock()

	if closer != nil {
		closer()
	}
}

// mergeByID combines the fetched snapshot with events buffered while
// the fetch was in flight, deduplicates by id and restores descending
// creation order.
func mergeByID(snapshot, buffered []model.Notification) []model.Notification {
	seen := make(map[int]bool, len(snapshot)+len(buffered))
	merged := make([]model.Notification, 0, len(snapshot)+len(buffered))
	for _, n := range snapshot {
		if !seen[n.ID] {
			seen[n.ID] = true
			merged = append(merged, n)
		}
	}
	for _, n := range buffered {
		if !seen[n.ID] {
			seen[n.ID] = true
			merged = append(merged, n)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID > merged[j].ID
	})
	return merged
}

func countUnread(items []model.Notification) int {
	count := 0
	for _, n := range items {
		if !n.IsRead {
			count++
		}
	}
	return count
}
