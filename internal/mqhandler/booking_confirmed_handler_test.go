package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "tableease/contracts/mq"
	"tableease/internal/model"
)

type fakeInserter struct {
	failures int
	inserts  []model.Notification
}

func (f *fakeInserter) Insert(ctx context.Context, n *model.Notification) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("write: connection refused")
	}
	n.ID = len(f.inserts) + 1
	f.inserts = append(f.inserts, *n)
	return nil
}

type fakePush struct {
	err    error
	pushed []model.Notification
}

func (f *fakePush) PublishNotification(ctx context.Context, n model.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.pushed = append(f.pushed, n)
	return nil
}

type fakeDeduper struct {
	held map[string]bool
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{held: map[string]bool{}}
}

func (f *fakeDeduper) key(handler string, id int) string {
	return fmt.Sprintf("%s:%d", handler, id)
}

func (f *fakeDeduper) AcquireOnce(ctx context.Context, handler string, bookingID int) bool {
	k := f.key(handler, bookingID)
	if f.held[k] {
		return false
	}
	f.held[k] = true
	return true
}

func (f *fakeDeduper) Release(ctx context.Context, handler string, bookingID int) {
	delete(f.held, f.key(handler, bookingID))
}

type fakeRetryCounter struct {
	counts map[string]int64
}

func newFakeRetryCounter() *fakeRetryCounter {
	return &fakeRetryCounter{counts: map[string]int64{}}
}

func (f *fakeRetryCounter) Increment(ctx context.Context, handler string, bookingID int) (int64, error) {
	k := fmt.Sprintf("%s:%d", handler, bookingID)
	f.counts[k]++
	return f.counts[k], nil
}

func (f *fakeRetryCounter) Reset(ctx context.Context, handler string, bookingID int) error {
	delete(f.counts, fmt.Sprintf("%s:%d", handler, bookingID))
	return nil
}

type fakeDLQ struct {
	parked [][]byte
}

func (f *fakeDLQ) PublishToDLQ(routingKey string, payload []byte, originalError string) error {
	f.parked = append(f.parked, payload)
	return nil
}

type handlerFixture struct {
	repo    *fakeInserter
	push    *fakePush
	deduper *fakeDeduper
	retries *fakeRetryCounter
	dlq     *fakeDLQ
	handler *BookingConfirmedHandler
}

func newFixture() *handlerFixture {
	f := &handlerFixture{
		repo:    &fakeInserter{},
		push:    &fakePush{},
		deduper: newFakeDeduper(),
		retries: newFakeRetryCounter(),
		dlq:     &fakeDLQ{},
	}
	f.handler = NewBookingConfirmedHandler(f.repo, f.push, f.deduper, f.retries, f.dlq, zap.NewNop())
	return f
}

func confirmedPayload(t *testing.T, bookingID int) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(mqcontracts.BookingConfirmedPayload{
		BookingID:      bookingID,
		UserID:         7,
		RestaurantID:   3,
		RestaurantName: "Trattoria",
		PartySize:      2,
		BookedFor:      time.Date(2026, 9, 10, 19, 0, 0, 0, time.UTC),
		Code:           "abc-123",
	})
	require.NoError(t, err)
	return raw
}

func TestBookingConfirmedHandler_StoresAndPushes(t *testing.T) {
	f := newFixture()

	err := f.handler.Handle(context.Background(), confirmedPayload(t, 1))
	require.NoError(t, err)

	require.Len(t, f.repo.inserts, 1)
	assert.Equal(t, 7, f.repo.inserts[0].UserID)
	assert.Equal(t, "Booking confirmed", f.repo.inserts[0].Title)
	assert.Contains(t, f.repo.inserts[0].Message, "Trattoria")
	assert.Contains(t, f.repo.inserts[0].Message, "abc-123")
	assert.Len(t, f.push.pushed, 1)
}

func TestBookingConfirmedHandler_EventSurvivesRequeue(t *testing.T) {
	f := newFixture()
	f.repo.failures = 1

	// First delivery hits a transient insert failure: the handler must
	// hand the dedup key back and return the error so the broker
	// redelivers.
	err := f.handler.Handle(context.Background(), confirmedPayload(t, 1))
	require.Error(t, err)
	assert.Empty(t, f.repo.inserts)
	assert.Empty(t, f.deduper.held, "dedup key must be released on failure")
	assert.Empty(t, f.dlq.parked)

	// Redelivery re-acquires and completes.
	err = f.handler.Handle(context.Background(), confirmedPayload(t, 1))
	require.NoError(t, err)
	require.Len(t, f.repo.inserts, 1)
	assert.Len(t, f.push.pushed, 1)
}

func TestBookingConfirmedHandler_DuplicateIsSkipped(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.Handle(context.Background(), confirmedPayload(t, 1)))
	require.NoError(t, f.handler.Handle(context.Background(), confirmedPayload(t, 1)))

	assert.Len(t, f.repo.inserts, 1)
	assert.Len(t, f.push.pushed, 1)
}

func TestBookingConfirmedHandler_MalformedPayloadGoesToDLQ(t *testing.T) {
	f := newFixture()

	err := f.handler.Handle(context.Background(), json.RawMessage(`{not json`))
	require.NoError(t, err, "malformed payloads must be acked, not requeued")

	assert.Len(t, f.dlq.parked, 1)
	assert.Empty(t, f.repo.inserts)
}

func TestBookingConfirmedHandler_RetriesExhaustedParksOnDLQ(t *testing.T) {
	f := newFixture()
	f.repo.failures = maxRetries + 2

	payload := confirmedPayload(t, 1)
	for i := 1; i <= maxRetries; i++ {
		err := f.handler.Handle(context.Background(), payload)
		require.Error(t, err, "attempt %d should requeue", i)
	}

	// Budget spent: the next delivery parks the message and acks.
	err := f.handler.Handle(context.Background(), payload)
	require.NoError(t, err)
	assert.Len(t, f.dlq.parked, 1)
	assert.Empty(t, f.repo.inserts)
	assert.Empty(t, f.retries.counts, "retry counter resets after parking")
	assert.Empty(t, f.deduper.held, "parked event stays replayable")
}

func TestBookingConfirmedHandler_PushFailureKeepsRow(t *testing.T) {
	f := newFixture()
	f.push.err = errors.New("redis down")

	err := f.handler.Handle(context.Background(), confirmedPayload(t, 1))
	require.NoError(t, err, "the row is durable, push is best-effort")
	assert.Len(t, f.repo.inserts, 1)
}
