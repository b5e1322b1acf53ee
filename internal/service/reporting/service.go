package reporting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
	"github.com/ecovolt-ph/ecovolt-backend/internal/repository/mongodb"
	"github.com/ecovolt-ph/ecovolt-backend/internal/repository/sheets"
)

const reportListCap = 90

// SuggestionSource provides the current restock suggestion for the summary
// row. The inventory service satisfies it.
type SuggestionSource interface {
	Suggestion() models.Suggestion
}

// Service aggregates the day's telemetry into persisted summaries.
type Service struct {
	sensors     mongodb.SensorStore
	reports     mongodb.ReportStore
	suggestions SuggestionSource
	exporter    sheets.Exporter
	logger      *zap.Logger
}

// NewService wires a new reporting service instance. exporter may be nil when
// no spreadsheet is configured.
func NewService(sensors mongodb.SensorStore, reports mongodb.ReportStore, suggestions SuggestionSource, exporter sheets.Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sensors:     sensors,
		reports:     reports,
		suggestions: suggestions,
		exporter:    exporter,
		logger:      logger,
	}
}

// GenerateDailyReport summarizes the telemetry of the calendar day containing
// day, persists the summary and appends it to the export sheet when
// configured. Days without readings still produce a (zeroed) report so the
// series has no holes.
func (s *Service) GenerateDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	readings, err := s.sensors.ListReadingsBetween(ctx, start, end)
	if err != nil {
		return models.DailyReport{}, err
	}

	report := summarize(start, readings)

	if s.suggestions != nil {
		sug := s.suggestions.Suggestion()
		report.LowestMaterial = sug.Material
		report.LowestStockKg = sug.Stock
	}

	if err := s.reports.SaveDailyReport(ctx, report); err != nil {
		return models.DailyReport{}, err
	}

	if s.exporter != nil {
		if err := s.exporter.AppendDailyReport(ctx, report); err != nil {
			// Export failure must not lose the persisted report.
			s.logger.Error("daily report sheet export failed", zap.Error(err))
		}
	}

	s.logger.Info("daily report generated",
		zap.Time("date", report.Date),
		zap.Int("readings", report.Readings))
	return report, nil
}

// Recent returns the newest limit reports in ascending date order.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.DailyReport, error) {
	if limit <= 0 || limit > reportListCap {
		limit = reportListCap
	}
	return s.reports.ListDailyReports(ctx, limit)
}

func summarize(date time.Time, readings []models.SensorReading) models.DailyReport {
	report := models.DailyReport{
		Date:      date,
		Readings:  len(readings),
		CreatedAt: time.Now().UTC(),
	}
	if len(readings) == 0 {
		return report
	}

	var sumTemp, sumGas, sumVolt float64
	for _, r := range readings {
		sumTemp += r.TempC
		sumGas += r.GasPPM
		sumVolt += r.VoltageV
	}
	n := float64(len(readings))
	report.AvgTempC = sumTemp / n
	report.AvgGasPPM = sumGas / n
	report.AvgVoltageV = sumVolt / n
	// Energy estimate: mean power held over the full day.
	report.EnergyKWh = (report.AvgVoltageV / 1000) * 24
	return report
}
