package reporting

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
)

type fakeSensorStore struct {
	readings []models.SensorReading
}

func (f *fakeSensorStore) InsertReading(_ context.Context, r models.SensorReading) (models.SensorReading, error) {
	f.readings = append(f.readings, r)
	return r, nil
}

func (f *fakeSensorStore) LatestReading(_ context.Context) (models.SensorReading, error) {
	return models.SensorReading{}, &models.NotFoundError{Entity: "sensor reading", ID: "latest"}
}

func (f *fakeSensorStore) ListRecentReadings(_ context.Context, limit int) ([]models.SensorReading, error) {
	return nil, nil
}

func (f *fakeSensorStore) ListReadingsBetween(_ context.Context, start, end time.Time) ([]models.SensorReading, error) {
	var out []models.SensorReading
	for _, r := range f.readings {
		if !r.Timestamp.Before(start) && r.Timestamp.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSensorStore) DeleteReading(_ context.Context, id string) error { return nil }

type fakeReportStore struct {
	saved []models.DailyReport
}

func (f *fakeReportStore) SaveDailyReport(_ context.Context, report models.DailyReport) error {
	f.saved = append(f.saved, report)
	return nil
}

func (f *fakeReportStore) ListDailyReports(_ context.Context, limit int) ([]models.DailyReport, error) {
	out := make([]models.DailyReport, len(f.saved))
	copy(out, f.saved)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type staticSuggestions struct {
	sug models.Suggestion
}

func (s staticSuggestions) Suggestion() models.Suggestion { return s.sug }

type capturingExporter struct {
	rows []models.DailyReport
	err  error
}

func (e *capturingExporter) AppendDailyReport(_ context.Context, report models.DailyReport) error {
	if e.err != nil {
		return e.err
	}
	e.rows = append(e.rows, report)
	return nil
}

func TestGenerateDailyReportAggregates(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sensors := &fakeSensorStore{readings: []models.SensorReading{
		{TempC: 34, GasPPM: 600, VoltageV: 10, Timestamp: day.Add(8 * time.Hour)},
		{TempC: 36, GasPPM: 700, VoltageV: 14, Timestamp: day.Add(12 * time.Hour)},
		// Outside the day, must be ignored.
		{TempC: 99, GasPPM: 9999, VoltageV: 99, Timestamp: day.AddDate(0, 0, 1).Add(time.Hour)},
	}}
	reports := &fakeReportStore{}
	exporter := &capturingExporter{}
	sug := staticSuggestions{sug: models.Suggestion{Material: "CoconutCoir", Stock: 5, Level: models.StockLow}}

	svc := NewService(sensors, reports, sug, exporter, zap.NewNop())
	report, err := svc.GenerateDailyReport(context.Background(), day.Add(3*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Readings)
	assert.InDelta(t, 35, report.AvgTempC, 1e-9)
	assert.InDelta(t, 650, report.AvgGasPPM, 1e-9)
	assert.InDelta(t, 12, report.AvgVoltageV, 1e-9)
	assert.InDelta(t, 0.288, report.EnergyKWh, 1e-9)
	assert.Equal(t, "CoconutCoir", report.LowestMaterial)
	assert.InDelta(t, 5, report.LowestStockKg, 1e-9)

	require.Len(t, reports.saved, 1)
	require.Len(t, exporter.rows, 1)
}

func TestGenerateDailyReportEmptyDay(t *testing.T) {
	svc := NewService(&fakeSensorStore{}, &fakeReportStore{}, nil, nil, zap.NewNop())

	report, err := svc.GenerateDailyReport(context.Background(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, report.Readings)
	assert.Zero(t, report.AvgTempC)
	assert.Zero(t, report.EnergyKWh)
}

func TestGenerateDailyReportSurvivesExportFailure(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	reports := &fakeReportStore{}
	exporter := &capturingExporter{err: errors.New("sheet quota exceeded")}

	svc := NewService(&fakeSensorStore{}, reports, nil, exporter, zap.NewNop())
	_, err := svc.GenerateDailyReport(context.Background(), day)
	require.NoError(t, err)
	assert.Len(t, reports.saved, 1)
}

func TestRecentClampsLimit(t *testing.T) {
	reports := &fakeReportStore{}
	for i := 0; i < 5; i++ {
		reports.saved = append(reports.saved, models.DailyReport{
			Date: time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC),
		})
	}
	svc := NewService(&fakeSensorStore{}, reports, nil, nil, zap.NewNop())

	got, err := svc.Recent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Date.Before(got[2].Date))
}
