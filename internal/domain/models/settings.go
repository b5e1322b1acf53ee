package models

// CalibrationSettings is the wholesale read/write settings document operators
// tune from the dashboard.
type CalibrationSettings struct {
	MaxTemp     float64 `bson:"max_temp" json:"max_temp"`
	MinLevel    float64 `bson:"min_level" json:"min_level"`
	MaxLevel    float64 `bson:"max_level" json:"max_level"`
	MinPowerKW  float64 `bson:"min_power_kw" json:"min_power_kw"`
	AlertGasPPM float64 `bson:"alert_gas_ppm" json:"alert_gas_ppm"`
}

// DefaultCalibrationSettings are materialized when no settings document
// exists yet.
func DefaultCalibrationSettings() CalibrationSettings {
	return CalibrationSettings{
		MaxTemp:     40.0,
		MinLevel:    40.0,
		MaxLevel:    90.0,
		MinPowerKW:  0.5,
		AlertGasPPM: 800,
	}
}
