package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis pub/sub channel carrying change events.
const DefaultChannel = "market:changes"

// Broker publishes change events to every server instance's hub.
type Broker interface {
	Publish(ctx context.Context, ev *v1.ChangeEvent) error
}

// LocalBroker hands events straight to an in-process hub.
type LocalBroker struct {
	hub *Hub
}

func NewLocalBroker(hub *Hub) *LocalBroker { return &LocalBroker{hub: hub} }

func (b *LocalBroker) Publish(_ context.Context, ev *v1.ChangeEvent) error {
	stamp(ev)
	b.hub.Publish(ev)
	return nil
}

// RedisBroker relays events through Redis pub/sub so that subscribers
// connected to other instances see them too. Run must be running for the
// local hub to receive anything, including this instance's own events.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     *zap.Logger
}

// RedisBrokerOption configures a RedisBroker.
type RedisBrokerOption func(*RedisBroker)

// WithChannel sets the Pub/Sub channel name
func WithChannel(channel string) RedisBrokerOption {
	return func(b *RedisBroker) {
		if channel != "" {
			b.channel = channel
		}
	}
}

// WithLogger sets the logger for the broker
func WithLogger(log *zap.Logger) RedisBrokerOption {
	return func(b *RedisBroker) {
		if log != nil {
			b.log = log
		}
	}
}

// NewRedisBroker uses an existing client; the caller owns it.
func NewRedisBroker(client *redis.Client, hub *Hub, opts ...RedisBrokerOption) *RedisBroker {
	b := &RedisBroker{client: client, channel: DefaultChannel, hub: hub, log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBroker) Publish(ctx context.Context, ev *v1.ChangeEvent) error {
	stamp(ev)
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.log.Error("failed to publish change event",
			zap.String("channel", b.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

// Run subscribes to the channel and feeds the hub until ctx ends.
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	// wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.log.Info("subscribed to change feed", zap.String("channel", b.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("change feed channel closed")
			}
			var ev v1.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Error("failed to unmarshal change event",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			b.hub.Publish(&ev)
		}
	}
}

func stamp(ev *v1.ChangeEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
}
