package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/config"
)

// RedisBus publishes events through Redis pub/sub so every instance's hub
// sees writes made on any of them.
type RedisBus struct {
	logger  *zap.Logger
	rdb     *goredis.Client
	channel string
	hub     *Hub
}

// NewRedisBus connects to Redis and starts forwarding inbound events into the
// local hub. The returned bus replaces the hub as the Publisher.
func NewRedisBus(ctx context.Context, cfg config.RedisConfig, hub *Hub, logger *zap.Logger) (*RedisBus, error) {
	if hub == nil {
		return nil, fmt.Errorf("hub required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	bus := &RedisBus{
		logger:  logger,
		rdb:     rdb,
		channel: cfg.Channel,
		hub:     hub,
	}
	if err := bus.startForwarder(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return bus, nil
}

// Publish sends the event over Redis; the forwarder on each instance delivers
// it to the local hub, including this one.
func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *RedisBus) startForwarder(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.logger.Warn("bad redis event payload", zap.Error(err))
					continue
				}
				b.hub.Broadcast(ev)
			}
		}
	}()

	return nil
}

// Close releases the Redis connection.
func (b *RedisBus) Close() error {
	return b.rdb.Close()
}
