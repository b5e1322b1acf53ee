package mongodb

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
)

// SensorStore defines the persistence operations of the telemetry log.
type SensorStore interface {
	InsertReading(ctx context.Context, reading models.SensorReading) (models.SensorReading, error)
	LatestReading(ctx context.Context) (models.SensorReading, error)
	ListRecentReadings(ctx context.Context, limit int) ([]models.SensorReading, error)
	ListReadingsBetween(ctx context.Context, start, end time.Time) ([]models.SensorReading, error)
	DeleteReading(ctx context.Context, id string) error
}

// InsertReading appends one telemetry sample.
func (r *MongoDBRepository) InsertReading(ctx context.Context, reading models.SensorReading) (models.SensorReading, error) {
	reading.ID = primitive.NewObjectID().Hex()
	if _, err := r.collection(sensorLogsColl).InsertOne(ctx, reading); err != nil {
		return models.SensorReading{}, &models.StoreUnavailableError{Op: "insert reading", Err: err}
	}
	return reading, nil
}

// LatestReading returns the newest sample, or NotFoundError when the log is
// empty.
func (r *MongoDBRepository) LatestReading(ctx context.Context) (models.SensorReading, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var reading models.SensorReading
	err := r.collection(sensorLogsColl).FindOne(ctx, bson.D{}, opts).Decode(&reading)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.SensorReading{}, &models.NotFoundError{Entity: "sensor reading", ID: "latest"}
	}
	if err != nil {
		return models.SensorReading{}, &models.StoreUnavailableError{Op: "latest reading", Err: err}
	}
	return reading, nil
}

// ListRecentReadings returns the newest limit samples in ascending timestamp
// order, ready for charting.
func (r *MongoDBRepository) ListRecentReadings(ctx context.Context, limit int) ([]models.SensorReading, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.collection(sensorLogsColl).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, &models.StoreUnavailableError{Op: "list readings", Err: err}
	}
	defer cur.Close(ctx)

	var readings []models.SensorReading
	if err := cur.All(ctx, &readings); err != nil {
		return nil, &models.StoreUnavailableError{Op: "decode readings", Err: err}
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})
	return readings, nil
}

// ListReadingsBetween returns samples in [start, end) ascending.
func (r *MongoDBRepository) ListReadingsBetween(ctx context.Context, start, end time.Time) ([]models.SensorReading, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": start, "$lt": end}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cur, err := r.collection(sensorLogsColl).Find(ctx, filter, opts)
	if err != nil {
		return nil, &models.StoreUnavailableError{Op: "list readings between", Err: err}
	}
	defer cur.Close(ctx)

	var readings []models.SensorReading
	if err := cur.All(ctx, &readings); err != nil {
		return nil, &models.StoreUnavailableError{Op: "decode readings", Err: err}
	}
	return readings, nil
}

// DeleteReading removes one telemetry sample.
func (r *MongoDBRepository) DeleteReading(ctx context.Context, id string) error {
	res, err := r.collection(sensorLogsColl).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return &models.StoreUnavailableError{Op: "delete reading", Err: err}
	}
	if res.DeletedCount == 0 {
		return &models.NotFoundError{Entity: "sensor reading", ID: id}
	}
	return nil
}
