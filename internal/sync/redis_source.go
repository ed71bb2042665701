package sync

import (
	"context"

	"github.com/aurelioventura/healthscan-backend/pkg/redis"
)

// RedisSource adapts the redis product change feed into an EventSource.
type RedisSource struct {
	client *redis.Client
}

// NewRedisSource builds an event source over the shared redis client.
func NewRedisSource(client *redis.Client) *RedisSource {
	return &RedisSource{client: client}
}

// Subscribe opens the product events channel. Event payloads are
// discarded; any message just signals that the collection changed.
func (s *RedisSource) Subscribe(ctx context.Context) (<-chan struct{}, func() error, error) {
	ps, err := s.client.Subscribe(ctx, s.client.ProductEventsChannel())
	if err != nil {
		return nil, nil, err
	}

	events := make(chan struct{}, 1)
	go func() {
		defer close(events)
		for range ps.Channel() {
			select {
			case events <- struct{}{}:
			default:
				// A pending event already signals the change.
			}
		}
	}()

	return events, ps.Close, nil
}
