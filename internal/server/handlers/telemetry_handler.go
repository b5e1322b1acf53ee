package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
	"github.com/ecovolt-ph/ecovolt-backend/internal/service/telemetry"
)

// TelemetryHandler exposes the sensor ingest and history endpoints.
type TelemetryHandler struct {
	svc    *telemetry.Service
	logger *zap.Logger
}

// NewTelemetryHandler constructs the HTTP handler adapter.
func NewTelemetryHandler(svc *telemetry.Service, logger *zap.Logger) *TelemetryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelemetryHandler{svc: svc, logger: logger}
}

type ingestRequest struct {
	TempC     float64 `json:"temp_c"`
	GasPPM    float64 `json:"gas_ppm"`
	VoltageV  float64 `json:"voltage_v"`
	Timestamp int64   `json:"timestamp"` // unix seconds, 0 = stamp server-side
}

// Ingest accepts one sample pushed by the rig controller.
func (h *TelemetryHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	reading := models.SensorReading{
		TempC:    req.TempC,
		GasPPM:   req.GasPPM,
		VoltageV: req.VoltageV,
	}
	if req.Timestamp > 0 {
		reading.Timestamp = time.Unix(req.Timestamp, 0).UTC()
	}

	stored, err := h.svc.Ingest(c.Request.Context(), reading)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reading": stored})
}

// Live returns the newest reading with the online flag.
func (h *TelemetryHandler) Live(c *gin.Context) {
	status, err := h.svc.Live(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// History returns the recent samples for charting.
func (h *TelemetryHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	readings, err := h.svc.History(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"readings": readings})
}

// DeleteReading removes one sample from the log.
func (h *TelemetryHandler) DeleteReading(c *gin.Context) {
	if err := h.svc.DeleteReading(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
