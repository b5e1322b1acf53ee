package mongodb

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
)

// ReportStore persists daily telemetry summaries.
type ReportStore interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
	ListDailyReports(ctx context.Context, limit int) ([]models.DailyReport, error)
}

// SaveDailyReport saves a daily report to the database.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	report.ID = primitive.NewObjectID().Hex()
	if _, err := r.collection(reportsColl).InsertOne(ctx, report); err != nil {
		return &models.StoreUnavailableError{Op: "insert daily report", Err: err}
	}
	return nil
}

// ListDailyReports returns the newest limit reports in ascending date order.
func (r *MongoDBRepository) ListDailyReports(ctx context.Context, limit int) ([]models.DailyReport, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.collection(reportsColl).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, &models.StoreUnavailableError{Op: "list daily reports", Err: err}
	}
	defer cur.Close(ctx)

	var reports []models.DailyReport
	if err := cur.All(ctx, &reports); err != nil {
		return nil, &models.StoreUnavailableError{Op: "decode daily reports", Err: err}
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Date.Before(reports[j].Date)
	})
	return reports, nil
}
