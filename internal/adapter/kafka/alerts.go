package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/alert"
	"github.com/couchcryptid/flood-zone-service/internal/config"
	kafkago "github.com/segmentio/kafka-go"
)

// AlertWriter publishes emitted notifications to the alert topic.
// It implements alert.Notifier.
type AlertWriter struct {
	writer *kafkago.Writer
}

// NewAlertWriter creates a Kafka producer for the configured alert topic.
func NewAlertWriter(cfg *config.Config) *AlertWriter {
	return &AlertWriter{writer: newProducer(cfg.KafkaBrokers, cfg.KafkaAlertTopic)}
}

func (w *AlertWriter) Notify(ctx context.Context, n alert.Notification) error {
	msg, err := alertMessage(n)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *AlertWriter) Close() error {
	return w.writer.Close()
}

// alertMessage keys a notification by state.
func alertMessage(n alert.Notification) (kafkago.Message, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(n.State),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_id", Value: []byte(n.ID)},
			{Key: "zone_id", Value: []byte(n.ZoneID)},
			{Key: "created_at", Value: []byte(n.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
