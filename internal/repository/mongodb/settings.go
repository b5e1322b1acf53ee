package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
)

const calibrationDocID = "calibration"

// SettingsStore reads and writes the calibration document wholesale.
type SettingsStore interface {
	GetCalibration(ctx context.Context) (models.CalibrationSettings, error)
	PutCalibration(ctx context.Context, settings models.CalibrationSettings) error
}

type calibrationDoc struct {
	ID                         string `bson:"_id"`
	models.CalibrationSettings `bson:",inline"`
}

// GetCalibration loads the settings document, materializing the defaults on
// first read the way the dashboard expects.
func (r *MongoDBRepository) GetCalibration(ctx context.Context) (models.CalibrationSettings, error) {
	var doc calibrationDoc
	err := r.collection(settingsColl).FindOne(ctx, bson.M{"_id": calibrationDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		defaults := models.DefaultCalibrationSettings()
		if err := r.PutCalibration(ctx, defaults); err != nil {
			return models.CalibrationSettings{}, err
		}
		return defaults, nil
	}
	if err != nil {
		return models.CalibrationSettings{}, &models.StoreUnavailableError{Op: "get calibration", Err: err}
	}
	return doc.CalibrationSettings, nil
}

// PutCalibration replaces the settings document.
func (r *MongoDBRepository) PutCalibration(ctx context.Context, settings models.CalibrationSettings) error {
	doc := calibrationDoc{ID: calibrationDocID, CalibrationSettings: settings}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection(settingsColl).ReplaceOne(ctx, bson.M{"_id": calibrationDocID}, doc, opts); err != nil {
		return &models.StoreUnavailableError{Op: "put calibration", Err: err}
	}
	return nil
}
