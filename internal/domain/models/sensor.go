package models

import "time"

// SensorReading is one telemetry sample pushed by the rig.
type SensorReading struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	TempC     float64   `bson:"temp_c" json:"temp_c"`
	GasPPM    float64   `bson:"gas_ppm" json:"gas_ppm"`
	VoltageV  float64   `bson:"voltage_v" json:"voltage_v"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// PowerKW derives the instantaneous power estimate the dashboard displays.
func (r SensorReading) PowerKW() float64 {
	return r.VoltageV / 1000
}

// LiveStatus wraps the latest reading with the derived online flag.
type LiveStatus struct {
	Reading SensorReading `json:"reading"`
	Online  bool          `json:"online"`
}
