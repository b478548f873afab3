package broker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaConsumer struct {
	reader  messageReader
	backoff time.Duration
}

func NewKafkaConsumer(brokers []string, groupID string, topic string) *KafkaConsumer {
	return &KafkaConsumer{
		reader:  kafka.NewReader(readerConfig(brokers, groupID, topic)),
		backoff: time.Second,
	}
}

// InstanceGroupID scopes prefix to one process. Every instance must see every
// invalidation, so instances never share a group.
func InstanceGroupID(prefix, origin string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "homepage"
	}
	return prefix + "-" + origin
}

// readerConfig starts a new group at the newest offset; invalidations are not replayed.
func readerConfig(brokers []string, groupID string, topic string) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		StartOffset: kafka.LastOffset,
	}
}

// Consume reads until ctx is done. Undecodable messages and handler errors are
// logged and skipped.
func (c *KafkaConsumer) Consume(ctx context.Context, handler func(context.Context, Envelope) error) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return err
			}
			slog.Warn("kafka read error", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
			continue
		}
		env, err := decodeEnvelope(m)
		if err != nil {
			slog.Warn("kafka message skipped", slog.String("topic", m.Topic), slog.Int64("offset", m.Offset), slog.Any("error", err))
			continue
		}
		slog.Debug("kafka message consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("key", env.Key()),
			slog.String("origin", env.Data.Origin),
			slog.String("siteId", env.Data.SiteID),
		)
		if err := handler(ctx, env); err != nil {
			slog.Warn("kafka handler error", slog.Any("error", err))
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
