package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"coffee-with-me/internal/domain/notifications"
)

const DefaultChannelPrefix = "cwm:notifications:"

// RedisSink publica cada notificación como JSON en el canal del destinatario,
// para que otras instancias (o un gateway) la reenvíen a sus conexiones.
type RedisSink struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSink(client redis.UniversalClient, prefix string) *RedisSink {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisSink{client: client, prefix: prefix}
}

func (s *RedisSink) Name() string { return "redis" }

// Channel devuelve el canal de un destinatario.
func (s *RedisSink) Channel(recipientID int64) string {
	return s.prefix + strconv.FormatInt(recipientID, 10)
}

func (s *RedisSink) Deliver(ctx context.Context, n notifications.Notification) error {
	payload, err := json.Marshal(n.Envelope())
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := s.client.Publish(ctx, s.Channel(n.RecipientID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
