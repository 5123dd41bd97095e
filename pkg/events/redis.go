package events

import (
	"context"
	"fmt"

	"github.com/cfoust/uno/pkg/utils"

	"github.com/go-redis/redis/v9"
	"github.com/rs/zerolog/log"
)

type RedisSettings struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// RedisPublisher mirrors room events onto Redis pub/sub channels named
// <prefix>:<room>, CBOR-encoded.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

func NewRedisPublisher(settings RedisSettings) *RedisPublisher {
	return &RedisPublisher{
		client: redis.NewClient(&redis.Options{
			Addr:     settings.Address,
			Password: settings.Password,
			DB:       settings.DB,
		}),
		prefix: settings.Prefix,
	}
}

func (r *RedisPublisher) Channel(room string) string {
	return fmt.Sprintf("%s:%s", r.prefix, room)
}

func (r *RedisPublisher) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisPublisher) Send(ctx context.Context, event Event) error {
	data, err := Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.Channel(event.Room), data).Err()
}

// Poll forwards every event from the subscription until ctx is done.
func (r *RedisPublisher) Poll(ctx context.Context, subscriber *utils.Subscriber[Event]) {
	defer subscriber.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-subscriber.Recv():
			err := r.Send(ctx, event)
			if err != nil {
				log.Warn().Err(err).Str("room", event.Room).Msg("failed to publish event to redis")
			}
		}
	}
}

func (r *RedisPublisher) Close() error {
	return r.client.Close()
}
