package models

import "time"

// DailyReport is the aggregated daily telemetry summary persisted by the
// report scheduler.
type DailyReport struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Date           time.Time `bson:"date" json:"date"`
	AvgTempC       float64   `bson:"avg_temp_c" json:"avg_temp_c"`
	AvgGasPPM      float64   `bson:"avg_gas_ppm" json:"avg_gas_ppm"`
	AvgVoltageV    float64   `bson:"avg_voltage_v" json:"avg_voltage_v"`
	EnergyKWh      float64   `bson:"energy_kwh" json:"energy_kwh"`
	Readings       int       `bson:"readings" json:"readings"`
	LowestMaterial string    `bson:"lowest_material" json:"lowest_material"`
	LowestStockKg  float64   `bson:"lowest_stock_kg" json:"lowest_stock_kg"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}
