package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHubBroadcastReachesSubscribedChannelOnly(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sensors := hub.Subscribe(ChannelSensors)
	inventory := hub.Subscribe(ChannelInventory)
	defer hub.Unsubscribe(inventory)

	hub.Broadcast(Event{Channel: ChannelSensors, Type: EventSensorReading, Data: "x"})

	select {
	case ev := <-sensors.Outbound:
		assert.Equal(t, EventSensorReading, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("sensors client received nothing")
	}

	select {
	case ev := <-inventory.Outbound:
		t.Fatalf("inventory client should not receive %v", ev)
	default:
	}

	hub.Unsubscribe(sensors)
}

func TestHubSubscribeMultipleChannels(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := hub.Subscribe(ChannelInventory, ChannelAlerts)

	require.NoError(t, hub.Publish(context.Background(), Event{Channel: ChannelAlerts, Type: EventThresholdAlert}))
	require.NoError(t, hub.Publish(context.Background(), Event{Channel: ChannelInventory, Type: EventInventoryChanged}))

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-client.Outbound:
			got[ev.Type] = true
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}
	assert.True(t, got[EventThresholdAlert])
	assert.True(t, got[EventInventoryChanged])

	hub.Unsubscribe(client)
}

func TestHubUnsubscribeClosesOutbound(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := hub.Subscribe(ChannelSettings)
	hub.Unsubscribe(client)

	_, open := <-client.Outbound
	assert.False(t, open)

	// Broadcast after unsubscribe must not panic or deliver.
	hub.Broadcast(Event{Channel: ChannelSettings, Type: EventSettingsUpdated})
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := hub.Subscribe(ChannelSensors)
	defer hub.Unsubscribe(client)

	for i := 0; i < cap(client.Outbound)+5; i++ {
		hub.Broadcast(Event{Channel: ChannelSensors, Type: EventSensorReading, Data: i})
	}

	assert.Len(t, client.Outbound, cap(client.Outbound))
}
