package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/vigneshnair/bazaarly-backend/pkg/logger"
)

// Publisher forwards messages to a Pub/Sub topic instead of sending them
// in-process. A separate worker consumes the topic and performs the
// actual delivery.
type Publisher struct {
	topic *pubsub.Publisher
	logg  *logger.Logger
}

// NewPublisher builds a topic-backed Notifier.
func NewPublisher(topic *pubsub.Publisher, logg *logger.Logger) (*Publisher, error) {
	if topic == nil {
		return nil, fmt.Errorf("publisher topic required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Publisher{topic: topic, logg: logg}, nil
}

// Enqueue publishes the message. The flag only reports acceptance by the
// broker, not delivery to the recipient.
func (p *Publisher) Enqueue(ctx context.Context, msg Message) bool {
	if strings.TrimSpace(msg.To) == "" {
		return false
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		p.logg.Error(ctx, "encode notification", err)
		return false
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"kind": string(msg.Kind)},
	})
	if _, err := result.Get(ctx); err != nil {
		p.logg.Error(ctx, "publish notification", err)
		return false
	}
	return true
}
