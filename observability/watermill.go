package observability

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// DefaultTopic is the topic WatermillObserver publishes to when none is given.
const DefaultTopic = "threads.events"

// WatermillObserver publishes each event as a JSON message on a watermill
// topic. Publish failures are handed to onError when set and otherwise
// dropped; observing never fails the operation that emitted the event.
type WatermillObserver struct {
	publisher message.Publisher
	topic     string
	onError   func(error)
}

// NewWatermillObserver creates a WatermillObserver publishing to topic.
func NewWatermillObserver(publisher message.Publisher, topic string, onError func(error)) *WatermillObserver {
	if topic == "" {
		topic = DefaultTopic
	}
	return &WatermillObserver{publisher: publisher, topic: topic, onError: onError}
}

func (o *WatermillObserver) OnEvent(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		o.fail(err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.SetContext(ctx)

	if err := o.publisher.Publish(o.topic, msg); err != nil {
		o.fail(err)
	}
}

func (o *WatermillObserver) fail(err error) {
	if o.onError != nil {
		o.onError(err)
	}
}
