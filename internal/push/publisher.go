package push

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	pushcontracts "tableease/contracts/push"
	"tableease/internal/model"
)

// Publisher delivers freshly inserted notifications onto the owner's
// live channel.
type Publisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewPublisher(rdb *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{rdb: rdb, logger: logger}
}

func (p *Publisher) PublishNotification(ctx context.Context, n model.Notification) error {
	ev := pushcontracts.NotificationEvent{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	channel := pushcontracts.UserChannel(n.UserID)
	if err := p.rdb.Publish(ctx, channel, body).Err(); err != nil {
		p.logger.Error("Failed to publish notification event",
			zap.String("channel", channel),
			zap.Int("notification_id", n.ID),
			zap.Error(err),
		)
		return err
	}

	p.logger.Debug("Notification event published",
		zap.String("channel", channel),
		zap.Int("notification_id", n.ID),
	)
	return nil
}
