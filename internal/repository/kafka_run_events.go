package repository

import (
	"context"
	"time"

	drepo "CurvePull/internal/domain/repository"
	pkgkafka "CurvePull/pkg/kafka"
	"CurvePull/pkg/util"
)

// KafkaRunEvents publishes a small event after each successful pipeline
// run so downstream consumers (report renderers, alerting) can react
// without polling the output files.
type KafkaRunEvents struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaRunEvents creates a Kafka-backed RunEvents publisher.
func NewKafkaRunEvents(producer *pkgkafka.Producer, topic string) *KafkaRunEvents {
	return &KafkaRunEvents{producer: producer, topic: topic}
}

type panelRefreshedEvent struct {
	Rows       int       `json:"rows"`
	LastDate   string    `json:"last_date"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PanelRefreshed announces a completed run. Keyed by last panel date so
// repeated runs for the same day land in one partition.
func (e *KafkaRunEvents) PanelRefreshed(ctx context.Context, rows int, lastDate time.Time) error {
	evt := panelRefreshedEvent{
		Rows:       rows,
		LastDate:   lastDate.Format(util.DateLayout),
		OccurredAt: time.Now().UTC(),
	}
	return e.producer.Publish(ctx, e.topic, []byte(evt.LastDate), evt)
}

// Close closes the underlying producer.
func (e *KafkaRunEvents) Close() error {
	return e.producer.Close()
}

var _ drepo.RunEvents = (*KafkaRunEvents)(nil)
