package repository

import (
	"context"

	"github.com/google/uuid"

	"EuroLens/internal/domain/models"
	"EuroLens/internal/domain/repository"
	pkgkafka "EuroLens/pkg/kafka"
	"EuroLens/pkg/util"
)

// Publisher is the producer surface used by KafkaDrawPublisher.
type Publisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaDrawPublisher writes draws to the ingestion topic keyed by draw date.
// All messages of one publish call share a trace id.
type KafkaDrawPublisher struct {
	producer Publisher
	topic    string
}

func NewKafkaDrawPublisher(producer Publisher, topic string) *KafkaDrawPublisher {
	return &KafkaDrawPublisher{producer: producer, topic: topic}
}

func (p *KafkaDrawPublisher) Publish(ctx context.Context, d models.Draw) error {
	return p.PublishBatch(ctx, []models.Draw{d})
}

func (p *KafkaDrawPublisher) PublishBatch(ctx context.Context, draws []models.Draw) error {
	if len(draws) == 0 {
		return nil
	}
	traceID := uuid.NewString()
	msgs := make([]pkgkafka.Message, 0, len(draws))
	for _, d := range draws {
		msgs = append(msgs, pkgkafka.Message{
			Key:     []byte(d.Date.UTC().Format(util.DateLayout)),
			Value:   d,
			Headers: map[string]string{pkgkafka.TraceHeader: traceID},
		})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaDrawPublisher) Close() error {
	return p.producer.Close()
}

var _ repository.DrawPublisher = (*KafkaDrawPublisher)(nil)
