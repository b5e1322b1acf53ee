package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
	"github.com/ecovolt-ph/ecovolt-backend/internal/realtime"
	"github.com/ecovolt-ph/ecovolt-backend/internal/repository/mongodb"
)

// SettingsHandler reads and writes the calibration document wholesale. The
// document is a thin pass-through so no service layer sits between the
// handler and the store.
type SettingsHandler struct {
	store     mongodb.SettingsStore
	publisher realtime.Publisher
	logger    *zap.Logger
}

// NewSettingsHandler constructs the HTTP handler adapter.
func NewSettingsHandler(store mongodb.SettingsStore, publisher realtime.Publisher, logger *zap.Logger) *SettingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsHandler{store: store, publisher: publisher, logger: logger}
}

// Get returns the calibration settings, materializing defaults on first read.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.store.GetCalibration(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// Put replaces the calibration settings.
func (h *SettingsHandler) Put(c *gin.Context) {
	var settings models.CalibrationSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.store.PutCalibration(c.Request.Context(), settings); err != nil {
		respondError(c, err)
		return
	}

	if h.publisher != nil {
		ev := realtime.Event{
			Channel: realtime.ChannelSettings,
			Type:    realtime.EventSettingsUpdated,
			Data:    settings,
		}
		if err := h.publisher.Publish(c.Request.Context(), ev); err != nil {
			h.logger.Warn("settings event publish failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
