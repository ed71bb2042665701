package ingest

import (
	"context"
	"errors"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	pkgerrors "github.com/aurelioventura/healthscan-backend/pkg/errors"
	"github.com/aurelioventura/healthscan-backend/pkg/logger"
)

// Runner pulls analysis results off the Pub/Sub subscription and feeds
// them to the consumer.
type Runner struct {
	subscription *gcppubsub.Subscriber
	consumer     *Consumer
	logg         *logger.Logger
}

// NewRunner creates a runner for the analysis-results subscription.
func NewRunner(subscription *gcppubsub.Subscriber, consumer *Consumer, logg *logger.Logger) (*Runner, error) {
	if subscription == nil {
		return nil, errors.New("analysis subscription is required")
	}
	if consumer == nil {
		return nil, errors.New("consumer is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Runner{
		subscription: subscription,
		consumer:     consumer,
		logg:         logg,
	}, nil
}

// Run consumes analysis messages until the context is canceled. Malformed
// payloads are acked so the broker does not redeliver them forever;
// transient store failures are nacked for redelivery.
func (r *Runner) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return r.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		logCtx := r.logg.WithField(innerCtx, "message_id", msg.ID)

		err := r.consumer.Process(logCtx, msg.Data)
		if err == nil {
			msg.Ack()
			return
		}

		if pkgerrors.Retryable(err) {
			r.logg.Error(logCtx, "analysis message failed, will redeliver", err)
			msg.Nack()
			return
		}

		r.logg.Warn(logCtx, "dropping unprocessable analysis message")
		msg.Ack()
	})
}
