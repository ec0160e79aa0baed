package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"EuroLens/internal/domain/models"
	drepo "EuroLens/internal/domain/repository"
	"EuroLens/internal/domain/service"
	pkgkafka "EuroLens/pkg/kafka"
	applogger "EuroLens/pkg/logger"
)

// KafkaDrawsHandler stores draws consumed from the ingestion topic.
type KafkaDrawsHandler struct {
	topic   string
	store   drepo.DrawStore
	loader  service.DrawLoader
	metrics drepo.Metrics
	log     *applogger.Logger
}

func NewKafkaDrawsHandler(topic string, store drepo.DrawStore, loader service.DrawLoader, metrics drepo.Metrics, l *applogger.Logger) *KafkaDrawsHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &KafkaDrawsHandler{topic: topic, store: store, loader: loader, metrics: metrics, log: l}
}

func (h *KafkaDrawsHandler) Topic() string { return h.topic }

// Handle expects one JSON draw: {date, numbers, stars}.
func (h *KafkaDrawsHandler) Handle(ctx context.Context, b []byte) error {
	var d models.Draw
	if err := json.Unmarshal(b, &d); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return &pkgkafka.HookError{Code: "ERR_DECODE", Err: err}
	}
	if !d.IsCanonical() {
		h.metrics.RecordError("consumer_malformed")
		return &pkgkafka.HookError{Code: "ERR_VALIDATION", Err: fmt.Errorf("malformed draw %s", d.Date.Format("2006-01-02"))}
	}

	start := time.Now()
	err := h.store.StoreBatch(ctx, []models.Draw{d}, "kafka")
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordDrawsLoaded("kafka", 1)

	// the draw is stored; a stale cache expires on its own TTL
	if err := h.loader.Invalidate(ctx); err != nil {
		h.log.Warn("invalidate draw cache",
			applogger.String("date", d.Date.Format("2006-01-02")),
			applogger.Error(err),
		)
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaDrawsHandler)(nil)
