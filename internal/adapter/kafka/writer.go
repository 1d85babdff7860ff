package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/covid-report-etl/internal/config"
	"github.com/couchcryptid/covid-report-etl/internal/domain"
)

// SummaryWriter produces per-country run summaries to a Kafka topic.
// It implements pipeline.SummaryPublisher.
type SummaryWriter struct {
	writer  *kafkago.Writer
	runDate string
	logger  *slog.Logger
}

// NewSummaryWriter creates a Kafka producer for the configured summary topic.
func NewSummaryWriter(cfg *config.Config, logger *slog.Logger) *SummaryWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSummaryTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &SummaryWriter{writer: w, runDate: cfg.RunDate, logger: logger}
}

// PublishSummaries serializes and publishes all summaries of a run in a
// single WriteMessages call.
func (w *SummaryWriter) PublishSummaries(ctx context.Context, summaries []domain.CountrySummary) error {
	if len(summaries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(summaries))
	for i := range summaries {
		msg, err := serializeSummary(summaries[i], w.runDate)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *SummaryWriter) Close() error {
	return w.writer.Close()
}

// serializeSummary marshals a CountrySummary into a Kafka message keyed by
// country code, so all runs for one country land on one partition.
func serializeSummary(s domain.CountrySummary, runDate string) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize country summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.Country),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_date", Value: []byte(runDate)},
		},
	}, nil
}
