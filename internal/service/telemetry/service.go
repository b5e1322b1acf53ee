package telemetry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
	"github.com/ecovolt-ph/ecovolt-backend/internal/realtime"
	"github.com/ecovolt-ph/ecovolt-backend/internal/repository/mongodb"
	"github.com/ecovolt-ph/ecovolt-backend/pkg/clients/alerts"
)

// Default chart windows used by the dashboard pages.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Service ingests rig telemetry, answers the dashboard's live/history reads
// and raises threshold alerts against the calibration settings.
type Service struct {
	store        mongodb.SensorStore
	settings     mongodb.SettingsStore
	publisher    realtime.Publisher
	notifier     alerts.Notifier
	logger       *zap.Logger
	offlineAfter time.Duration
	now          func() time.Time
}

// NewService wires a new telemetry service. notifier may be nil when no alert
// webhook is configured.
func NewService(store mongodb.SensorStore, settings mongodb.SettingsStore, publisher realtime.Publisher, notifier alerts.Notifier, offlineAfter time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:        store,
		settings:     settings,
		publisher:    publisher,
		notifier:     notifier,
		logger:       logger,
		offlineAfter: offlineAfter,
		now:          time.Now,
	}
}

// Ingest persists one rig sample, fans it out and checks alert thresholds.
// A zero timestamp is stamped server-side; non-finite values are rejected at
// the edge so the log never needs scrubbing.
func (s *Service) Ingest(ctx context.Context, reading models.SensorReading) (models.SensorReading, error) {
	for name, v := range map[string]float64{
		"temp_c":    reading.TempC,
		"gas_ppm":   reading.GasPPM,
		"voltage_v": reading.VoltageV,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.SensorReading{}, models.NewValidationError("%s must be a finite number", name)
		}
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = s.now().UTC()
	}

	stored, err := s.store.InsertReading(ctx, reading)
	if err != nil {
		return models.SensorReading{}, err
	}

	if s.publisher != nil {
		ev := realtime.Event{
			Channel: realtime.ChannelSensors,
			Type:    realtime.EventSensorReading,
			Data:    stored,
		}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("sensor event publish failed", zap.Error(err))
		}
	}

	s.checkThresholds(ctx, stored)
	return stored, nil
}

// Live returns the latest reading with the derived online flag. An empty log
// reports offline with a zero reading.
func (s *Service) Live(ctx context.Context) (models.LiveStatus, error) {
	reading, err := s.store.LatestReading(ctx)
	if err != nil {
		var nfErr *models.NotFoundError
		if errors.As(err, &nfErr) {
			return models.LiveStatus{}, nil
		}
		return models.LiveStatus{}, err
	}

	online := s.now().UTC().Sub(reading.Timestamp) <= s.offlineAfter
	return models.LiveStatus{Reading: reading, Online: online}, nil
}

// History returns the most recent samples ascending, clamped to the
// dashboard's chart windows.
func (s *Service) History(ctx context.Context, limit int) ([]models.SensorReading, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.store.ListRecentReadings(ctx, limit)
}

// DeleteReading removes one sample from the log.
func (s *Service) DeleteReading(ctx context.Context, id string) error {
	if err := s.store.DeleteReading(ctx, id); err != nil {
		return err
	}
	s.logger.Info("sensor reading deleted", zap.String("id", id))
	return nil
}

func (s *Service) checkThresholds(ctx context.Context, reading models.SensorReading) {
	cal, err := s.settings.GetCalibration(ctx)
	if err != nil {
		s.logger.Warn("threshold check skipped, calibration unavailable", zap.Error(err))
		return
	}

	var raised []alerts.Alert
	if reading.GasPPM > cal.AlertGasPPM {
		raised = append(raised, alerts.Alert{
			Kind:      "gas_ppm",
			Message:   fmt.Sprintf("gas concentration %.0f ppm exceeds alert level %.0f ppm", reading.GasPPM, cal.AlertGasPPM),
			Value:     reading.GasPPM,
			Threshold: cal.AlertGasPPM,
			At:        reading.Timestamp,
		})
	}
	if reading.TempC > cal.MaxTemp {
		raised = append(raised, alerts.Alert{
			Kind:      "temp_c",
			Message:   fmt.Sprintf("digester temperature %.1f°C exceeds maximum %.1f°C", reading.TempC, cal.MaxTemp),
			Value:     reading.TempC,
			Threshold: cal.MaxTemp,
			At:        reading.Timestamp,
		})
	}

	for _, alert := range raised {
		s.logger.Warn("threshold breached",
			zap.String("kind", alert.Kind),
			zap.Float64("value", alert.Value),
			zap.Float64("threshold", alert.Threshold))

		if s.publisher != nil {
			ev := realtime.Event{
				Channel: realtime.ChannelAlerts,
				Type:    realtime.EventThresholdAlert,
				Data:    alert,
			}
			if err := s.publisher.Publish(ctx, ev); err != nil {
				s.logger.Warn("alert event publish failed", zap.Error(err))
			}
		}
		if s.notifier != nil {
			if err := s.notifier.SendAlert(ctx, alert); err != nil {
				s.logger.Error("alert webhook delivery failed", zap.Error(err))
			}
		}
	}
}
