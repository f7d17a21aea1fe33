package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/mikesoares/linkwatch/internal/domain"
)

// Kafka publishes one TransitionEvent per changed interface, keyed by
// interface name so per-interface ordering survives partitioning.
type Kafka struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewKafka(brokers []string, topic string, log *slog.Logger) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		log: log,
	}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Notify(ctx context.Context, runID string, transitions []domain.Transition, viaIface string) error {
	messages := make([]kafka.Message, 0, len(transitions))

	for _, tr := range transitions {
		payload, err := json.Marshal(domain.EventFromTransition(runID, tr))
		if err != nil {
			return fmt.Errorf("marshal transition event: %w", err)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(tr.Iface.Name),
			Value: payload,
		})
	}

	if len(messages) == 0 {
		return nil
	}

	return k.writer.WriteMessages(ctx, messages...)
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
