package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/vigneshnair/bazaarly-backend/pkg/logger"
)

// Consumer drains the notifications subscription and hands messages to
// the in-process dispatcher for delivery.
type Consumer struct {
	dispatcher   *Dispatcher
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer builds a notification consumer.
func NewConsumer(dispatcher *Dispatcher, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notifications subscription required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		dispatcher:   dispatcher,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"message_id": msg.ID,
			"kind":       msg.Attributes["kind"],
		})

		var payload Message
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			// Malformed messages will never parse; ack so they don't loop.
			c.logg.Error(logCtx, "failed to decode notification", err)
			msg.Ack()
			return
		}

		if !c.dispatcher.Enqueue(ctx, payload) {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}
