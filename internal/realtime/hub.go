// Package realtime pushes live dashboard events through an in-process SSE
// hub, with an optional Redis bus for multi-instance fan-out.
package realtime

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stream channels the dashboard can subscribe to.
const (
	ChannelSensors   = "sensors"
	ChannelInventory = "inventory"
	ChannelSettings  = "settings"
	ChannelAlerts    = "alerts"
)

// Event types carried over the channels.
const (
	EventSensorReading    = "sensor.reading"
	EventInventoryChanged = "inventory.changed"
	EventSettingsUpdated  = "settings.updated"
	EventThresholdAlert   = "alert.threshold"
)

// Event is one push notification fanned out to subscribed dashboard clients.
type Event struct {
	Channel string `json:"channel"`
	Type    string `json:"type"`
	Data    any    `json:"data,omitempty"`
}

// Publisher fans events out to every interested subscriber, locally or across
// instances.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Client is one connected SSE stream.
type Client struct {
	ID       uuid.UUID
	Outbound chan Event
	channels map[string]bool
}

// Hub tracks SSE subscriptions per channel and broadcasts events to them.
type Hub struct {
	mu            sync.RWMutex
	logger        *zap.Logger
	subscriptions map[string]map[*Client]bool
}

// NewHub builds an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:        logger,
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Subscribe registers a new client on the given channels. Blank channel names
// are ignored.
func (h *Hub) Subscribe(channels ...string) *Client {
	client := &Client{
		ID:       uuid.New(),
		Outbound: make(chan Event, 16),
		channels: make(map[string]bool),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range channels {
		ch = strings.TrimSpace(ch)
		if ch == "" {
			continue
		}
		client.channels[ch] = true
		clients, ok := h.subscriptions[ch]
		if !ok {
			clients = make(map[*Client]bool)
			h.subscriptions[ch] = clients
		}
		clients[client] = true
	}

	h.logger.Debug("sse client subscribed",
		zap.String("client_id", client.ID.String()),
		zap.Int("channels", len(client.channels)))
	return client
}

// Unsubscribe removes the client from every channel and closes its queue.
func (h *Hub) Unsubscribe(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range client.channels {
		if clients, ok := h.subscriptions[ch]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.subscriptions, ch)
			}
		}
	}
	client.channels = make(map[string]bool)
	close(client.Outbound)

	h.logger.Debug("sse client unsubscribed", zap.String("client_id", client.ID.String()))
}

// Broadcast delivers the event to every local subscriber of its channel.
// Slow clients have the event dropped rather than blocking the caller.
func (h *Hub) Broadcast(ev Event) {
	if ev.Channel == "" {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.subscriptions[ev.Channel]
	if !ok {
		return
	}
	for c := range clients {
		select {
		case c.Outbound <- ev:
		default:
			h.logger.Warn("dropping sse event, outbound buffer full",
				zap.String("client_id", c.ID.String()),
				zap.String("channel", ev.Channel))
		}
	}
}

// Publish implements Publisher for single-instance deployments.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.Broadcast(ev)
	return nil
}
