package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dropChannel = "ghost:drops"

// DropBus fans live drops out to every instance over Redis pub/sub.
type DropBus struct {
	client *redis.Client
}

func NewDropBus(client *redis.Client) *DropBus {
	return &DropBus{client: client}
}

func (b *DropBus) PublishDrop(ctx context.Context, payload []byte) error {
	return b.client.Publish(ctx, dropChannel, payload).Err()
}

// Listen delivers every message on the drop channel to handle until ctx is
// cancelled. It returns once the subscription is confirmed.
func (b *DropBus) Listen(ctx context.Context, handle func([]byte)) error {
	pubsub := b.client.Subscribe(ctx, dropChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					log.Warn().Msg("drop bus channel closed")
					return
				}
				handle([]byte(msg.Payload))
			}
		}
	}()
	return nil
}
