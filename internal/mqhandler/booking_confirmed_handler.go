package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "tableease/contracts/mq"
	"tableease/internal/model"
	"tableease/pkg/metrics"
	"tableease/pkg/util"
)

const (
	handlerName = "booking_confirmed_notification"
	maxRetries  = 5
)

// The handler's collaborators, narrowed to what it calls. Satisfied by
// repository.NotificationRepository, push.Publisher, util.Deduper,
// util.RetryCounter and mq.Publisher.
type notificationInserter interface {
	Insert(ctx context.Context, n *model.Notification) error
}

type livePublisher interface {
	PublishNotification(ctx context.Context, n model.Notification) error
}

type eventDeduper interface {
	AcquireOnce(ctx context.Context, handler string, bookingID int) bool
	Release(ctx context.Context, handler string, bookingID int)
}

type retryCounter interface {
	Increment(ctx context.Context, handler string, bookingID int) (int64, error)
	Reset(ctx context.Context, handler string, bookingID int) error
}

type deadLetterPublisher interface {
	PublishToDLQ(routingKey string, payload []byte, originalError string) error
}

// BookingConfirmedHandler turns booking.confirmed events into
// notification rows and live push events.
type BookingConfirmedHandler struct {
	repo         notificationInserter
	pushPub      livePublisher
	deduper      eventDeduper
	retryCounter retryCounter
	mqPublisher  deadLetterPublisher
	logger       *zap.Logger
}

func NewBookingConfirmedHandler(
	repo notificationInserter,
	pushPub livePublisher,
	deduper eventDeduper,
	retryCounter retryCounter,
	mqPublisher deadLetterPublisher,
	logger *zap.Logger,
) *BookingConfirmedHandler {
	return &BookingConfirmedHandler{
		repo:         repo,
		pushPub:      pushPub,
		deduper:      deduper,
		retryCounter: retryCounter,
		mqPublisher:  mqPublisher,
		logger:       logger,
	}
}

func (h *BookingConfirmedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mqcontracts.RoutingKeyBookingConfirmed, handlerName, time.Since(start))
	}()

	var p mqcontracts.BookingConfirmedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal booking confirmed payload", zap.Error(err))
		// Malformed payloads go straight to the DLQ; requeueing them
		// would loop forever.
		if dlqErr := h.mqPublisher.PublishToDLQ(mqcontracts.RoutingKeyBookingConfirmed, raw, err.Error()); dlqErr != nil {
			h.logger.Error("Failed to publish to DLQ", zap.Error(dlqErr))
		}
		return nil
	}

	if !h.deduper.AcquireOnce(ctx, handlerName, p.BookingID) {
		return nil
	}

	notif := &model.Notification{
		UserID: p.UserID,
		Title:  "Booking confirmed",
		Message: fmt.Sprintf("Your table for %d at %s on %s is confirmed. Code: %s",
			p.PartySize, p.RestaurantName, p.BookedFor.Format("Mon, 2 Jan 15:04"), p.Code),
	}

	if err := h.repo.Insert(ctx, notif); err != nil {
		// The dedup key marks "processed", not "seen". Give it back so
		// the redelivered message is not skipped as a duplicate.
		h.deduper.Release(ctx, handlerName, p.BookingID)
		return h.failWithRetry(ctx, raw, p.BookingID, err)
	}
	metrics.IncrementNotificationDelivered("stored")

	// The push is best-effort: the row is already durable, and the
	// client re-reads the snapshot on its next fetch.
	if err := h.pushPub.PublishNotification(ctx, *notif); err != nil {
		metrics.IncrementNotificationDelivered("push_failed")
		h.logger.Warn("Live push failed, notification stored only",
			zap.Int("notification_id", notif.ID),
			zap.Int("user_id", p.UserID),
			zap.Error(err),
		)
		return nil
	}
	metrics.IncrementNotificationDelivered("pushed")

	h.logger.Info("Notification created",
		zap.Int("booking_id", p.BookingID),
		zap.Int("user_id", p.UserID),
		zap.Int("notification_id", notif.ID),
	)
	return nil
}

// failWithRetry requeues transient failures until the retry budget is
// spent, then parks the message on the DLQ.
func (h *BookingConfirmedHandler) failWithRetry(ctx context.Context, raw json.RawMessage, bookingID int, err error) error {
	retryable, errType := util.IsRetryableError(err)

	count, cntErr := h.retryCounter.Increment(ctx, handlerName, bookingID)
	if cntErr != nil {
		h.logger.Warn("Retry counter unavailable", zap.Error(cntErr))
	}

	if util.ShouldRetry(count, maxRetries, retryable) {
		h.logger.Error("Handler failed, requeueing",
			zap.Int("booking_id", bookingID),
			zap.Int64("retry_count", count),
			zap.String("error_type", errType),
			zap.Error(err),
		)
		return err
	}

	h.logger.Error("Retries exhausted, sending to DLQ",
		zap.Int("booking_id", bookingID),
		zap.Int64("retry_count", count),
		zap.String("error_type", errType),
		zap.Error(err),
	)
	if dlqErr := h.mqPublisher.PublishToDLQ(mqcontracts.RoutingKeyBookingConfirmed, raw, err.Error()); dlqErr != nil {
		h.logger.Error("Failed to publish to DLQ", zap.Error(dlqErr))
		return err
	}
	_ = h.retryCounter.Reset(ctx, handlerName, bookingID)
	return nil
}
