package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/service/reporting"
	"github.com/ecovolt-ph/ecovolt-backend/internal/service/telemetry"
)

// ReportsHandler serves daily summaries and the sensor history download.
type ReportsHandler struct {
	reports   *reporting.Service
	telemetry *telemetry.Service
	logger    *zap.Logger
}

// NewReportsHandler constructs the HTTP handler adapter.
func NewReportsHandler(reports *reporting.Service, telemetrySvc *telemetry.Service, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{reports: reports, telemetry: telemetrySvc, logger: logger}
}

// ListDaily returns recent daily reports.
func (h *ReportsHandler) ListDaily(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	reports, err := h.reports.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// ExportHistory streams the recent sensor history as a CSV download, the
// server-side counterpart of the dashboard's spreadsheet export button.
func (h *ReportsHandler) ExportHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = telemetry.MaxHistoryLimit
	}

	readings, err := h.telemetry.History(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="EcoVolt_Sensor_Report.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Date/Time", "Power (kW)", "Temperature (C)", "Gas (ppm)", "Voltage (V)"})
	for _, r := range readings {
		_ = w.Write([]string{
			r.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.2f", r.PowerKW()),
			fmt.Sprintf("%.2f", r.TempC),
			fmt.Sprintf("%.0f", r.GasPPM),
			fmt.Sprintf("%.2f", r.VoltageV),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.logger.Warn("csv export write failed", zap.Error(err))
	}
}
