package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/realtime"
)

const heartbeatInterval = 25 * time.Second

// StreamHandler serves the SSE endpoint the dashboard subscribes to for live
// sensor, inventory, settings and alert events.
type StreamHandler struct {
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewStreamHandler constructs the HTTP handler adapter.
func NewStreamHandler(hub *realtime.Hub, logger *zap.Logger) *StreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamHandler{hub: hub, logger: logger}
}

// Stream subscribes the connection to the requested channels (default: all)
// and writes events until the client disconnects.
func (h *StreamHandler) Stream(c *gin.Context) {
	channels := []string{
		realtime.ChannelSensors,
		realtime.ChannelInventory,
		realtime.ChannelSettings,
		realtime.ChannelAlerts,
	}
	if raw := c.Query("channels"); raw != "" {
		channels = strings.Split(raw, ",")
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := h.hub.Subscribe(channels...)
	defer h.hub.Unsubscribe(client)

	h.logger.Debug("sse stream opened",
		zap.String("client_id", client.ID.String()),
		zap.Strings("channels", channels))

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": heartbeat\n\n")
			flusher.Flush()
		case ev, open := <-client.Outbound:
			if !open {
				return
			}
			payload, err := json.Marshal(ev.Data)
			if err != nil {
				h.logger.Warn("sse payload marshal failed", zap.Error(err))
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
		}
	}
}
