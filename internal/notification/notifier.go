// Package notification delivers fire-and-forget workflow notifications.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notifier sends a message to a recipient. Callers treat failures as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, message string, meta map[string]string) error
}

// Message is the envelope published for downstream delivery workers.
type Message struct {
	RecipientID uuid.UUID         `json:"recipient_id"`
	Message     string            `json:"message"`
	Context     map[string]string `json:"context,omitempty"`
	SentAt      time.Time         `json:"sent_at"`
}

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes notifications on a Redis pub/sub channel.
type RedisNotifier struct {
	client  publisher
	channel string
	logger  *slog.Logger
}

// NewRedisNotifier creates a RedisNotifier publishing to channel.
func NewRedisNotifier(client publisher, channel string, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// Notify publishes the message envelope.
func (n *RedisNotifier) Notify(
	ctx context.Context,
	recipientID uuid.UUID,
	message string,
	meta map[string]string,
) error {
	payload, err := json.Marshal(Message{
		RecipientID: recipientID,
		Message:     message,
		Context:     meta,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	receivers, err := n.client.Publish(ctx, n.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	n.logger.Debug("notification published",
		slog.String("channel", n.channel),
		slog.String("recipient_id", recipientID.String()),
		slog.Int64("receivers", receivers),
	)
	return nil
}

// LogNotifier writes notifications to the log. It is used when no Redis URL is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(_ context.Context, recipientID uuid.UUID, message string, meta map[string]string) error {
	attrs := []any{
		slog.String("recipient_id", recipientID.String()),
		slog.String("message", message),
	}
	for k, v := range meta {
		attrs = append(attrs, slog.String(k, v))
	}
	n.logger.Info("notification", attrs...)
	return nil
}

// NewRedisClient parses url and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}
