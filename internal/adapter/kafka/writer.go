package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/station-scout/internal/config"
	"github.com/couchcryptid/station-scout/internal/domain"
)

// Writer publishes rankings to a Kafka topic, one message per candidate.
// It implements pipeline.Reporter.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured ranking topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Report publishes every ranked candidate in a single WriteMessages call.
// Keys are station names so a station's history stays on one partition.
func (w *Writer) Report(ctx context.Context, ranking domain.Ranking) error {
	if len(ranking.Candidates) == 0 {
		w.logger.Info("empty ranking, nothing to publish", "run_id", ranking.RunID)
		return nil
	}
	msgs := make([]kafkago.Message, len(ranking.Candidates))
	for i := range ranking.Candidates {
		msg, err := serializeToMessage(ranking, ranking.Candidates[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish ranking: %w", err)
	}
	w.logger.Info("ranking published", "run_id", ranking.RunID, "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// rankingMessage is the value of one published candidate.
type rankingMessage struct {
	RunID        string    `json:"run_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	Destinations []string  `json:"destinations"`
	domain.RankedCandidate
}

// serializeToMessage marshals one ranked candidate into a Kafka message.
func serializeToMessage(ranking domain.Ranking, c domain.RankedCandidate) (kafkago.Message, error) {
	data, err := json.Marshal(rankingMessage{
		RunID:           ranking.RunID,
		GeneratedAt:     ranking.GeneratedAt,
		Destinations:    ranking.Destinations,
		RankedCandidate: c,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize candidate %s: %w", c.Station, err)
	}
	return kafkago.Message{
		Key:   []byte(c.Station),
		Value: data,
		Time:  ranking.GeneratedAt,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(ranking.RunID)},
			{Key: "rank", Value: []byte(strconv.Itoa(c.Rank))},
		},
	}, nil
}
