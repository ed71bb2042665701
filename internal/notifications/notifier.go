package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aurelioventura/healthscan-backend/pkg/logger"
)

// Notice is the payload pushed to connected dashboards.
type Notice struct {
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

type noticePublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
	NoticesChannel() string
}

// RedisNotifier fans user-facing notices out over the shared redis
// notices channel. Delivery is best effort; a dropped notice is logged
// and forgotten.
type RedisNotifier struct {
	publisher noticePublisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewRedisNotifier builds a notifier over the shared redis client.
func NewRedisNotifier(publisher noticePublisher, logg *logger.Logger) *RedisNotifier {
	return &RedisNotifier{
		publisher: publisher,
		logg:      logg,
		now:       time.Now,
	}
}

// Notify publishes one notice. Failures never propagate to the caller.
func (n *RedisNotifier) Notify(ctx context.Context, message string) {
	if n == nil || n.publisher == nil {
		return
	}

	payload, err := json.Marshal(Notice{Message: message, SentAt: n.now().UTC()})
	if err != nil {
		if n.logg != nil {
			n.logg.Error(ctx, "failed to encode notice", err)
		}
		return
	}

	if err := n.publisher.Publish(ctx, n.publisher.NoticesChannel(), payload); err != nil {
		if n.logg != nil {
			n.logg.Warn(ctx, "failed to publish notice")
		}
	}
}
