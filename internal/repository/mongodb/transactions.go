package mongodb

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
)

// TransactionStore defines the persistence operations of the feedstock ledger.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, rec models.TransactionRecord) (models.TransactionRecord, error)
	ListRecentTransactions(ctx context.Context, limit int) ([]models.TransactionRecord, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// InsertTransaction appends one immutable ledger record and returns it with
// its assigned id.
func (r *MongoDBRepository) InsertTransaction(ctx context.Context, rec models.TransactionRecord) (models.TransactionRecord, error) {
	rec.ID = primitive.NewObjectID().Hex()
	if _, err := r.collection(transactionsColl).InsertOne(ctx, rec); err != nil {
		return models.TransactionRecord{}, &models.StoreUnavailableError{Op: "insert transaction", Err: err}
	}
	return rec, nil
}

// ListRecentTransactions returns the most recent limit records in ascending
// timestamp order. Older records fall outside the aggregation window, so the
// folded stock drifts from lifetime stock once the collection outgrows it.
func (r *MongoDBRepository) ListRecentTransactions(ctx context.Context, limit int) ([]models.TransactionRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.collection(transactionsColl).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, &models.StoreUnavailableError{Op: "list transactions", Err: err}
	}
	defer cur.Close(ctx)

	var records []models.TransactionRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, &models.StoreUnavailableError{Op: "decode transactions", Err: err}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

// DeleteTransaction removes the record matching id.
func (r *MongoDBRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.collection(transactionsColl).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return &models.StoreUnavailableError{Op: "delete transaction", Err: err}
	}
	if res.DeletedCount == 0 {
		return &models.NotFoundError{Entity: "transaction", ID: id}
	}
	return nil
}
