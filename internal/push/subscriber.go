package push

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	pushcontracts "tableease/contracts/push"
	"tableease/internal/model"
)

// Subscriber opens live channels scoped to one user's notification
// inserts.
type Subscriber struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewSubscriber(rdb *redis.Client, logger *zap.Logger) *Subscriber {
	return &Subscriber{rdb: rdb, logger: logger}
}

// Subscribe returns a channel of insert events for the user and a
// closer that tears the subscription down. The returned channel is
// closed after the closer runs, so consumers can range over it.
func (s *Subscriber) Subscribe(ctx context.Context, userID int) (<-chan model.Notification, func(), error) {
	sub := s.rdb.Subscribe(ctx, pushcontracts.UserChannel(userID))

	// Confirm the subscription before handing it out, so no insert
	// between "subscribed" and "listening" is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan model.Notification, 16)
	msgs := sub.Channel()

	go func() {
		defer close(out)
		for msg := range msgs {
			var ev pushcontracts.NotificationEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.logger.Warn("Dropping malformed push payload",
					zap.Int("user_id", userID),
					zap.Error(err),
				)
				continue
			}
			out <- model.Notification{
				ID:        ev.ID,
				UserID:    ev.UserID,
				Title:     ev.Title,
				Message:   ev.Message,
				IsRead:    ev.IsRead,
				CreatedAt: ev.CreatedAt,
			}
		}
	}()

	closer := func() {
		_ = sub.Close()
	}
	return out, closer, nil
}
