package notify

import (
	"context"

	"guidecal/pkg/kafka"
	"guidecal/pkg/model"
)

// KafkaNotifier publishes hold events to the notify topic, keyed by the
// provider so a provider's notifications stay ordered.
type KafkaNotifier struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaNotifier(brokers []string, topic, source string) (*KafkaNotifier, error) {
	producer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: brokers}, topic)
	if err != nil {
		return nil, err
	}

	return &KafkaNotifier{
		producer: producer,
		source:   source,
	}, nil
}

func (n *KafkaNotifier) HoldEvent(ctx context.Context, eventType string, hold *model.AvailabilityHold) error {
	msg, err := kafka.NewEvent(hold.HoldeeID, eventType, n.source, hold)
	if err != nil {
		return err
	}
	return n.producer.Publish(ctx, msg)
}

func (n *KafkaNotifier) BookingRequestEvent(ctx context.Context, eventType string, request *model.BookingRequest) error {
	msg, err := kafka.NewEvent(request.TargetID, eventType, n.source, request)
	if err != nil {
		return err
	}
	return n.producer.Publish(ctx, msg)
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}
