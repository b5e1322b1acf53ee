// Package ledger holds the pure feedstock inventory aggregation: folding the
// transaction log into a stock snapshot and deriving the restock suggestion.
package ledger

import (
	"math"
	"sort"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
)

// Stock classification thresholds in kilograms.
const lowStockThreshold = 50.0

// ComputeSnapshot folds the transaction records into per-material running
// totals. The input is re-sorted by timestamp before folding; the result must
// not depend on arrival order. A NaN or infinite quantity degrades to 0 so one
// bad record cannot poison the whole snapshot.
func ComputeSnapshot(records []models.TransactionRecord) *models.StockSnapshot {
	ordered := make([]models.TransactionRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	snapshot := models.NewStockSnapshot()
	for _, rec := range ordered {
		qty := rec.Quantity
		if math.IsNaN(qty) || math.IsInf(qty, 0) {
			qty = 0
		}
		switch rec.Action {
		case models.ActionAdd:
			snapshot.Apply(rec.MaterialName, qty)
		case models.ActionConsume:
			snapshot.Apply(rec.MaterialName, -qty)
		}
	}
	return snapshot
}

// SuggestRestock picks the material with the lowest positive stock. Materials
// at or below zero are excluded; when nothing is in stock the sentinel entry
// is returned so the dashboard can prompt for a first material.
func SuggestRestock(snapshot *models.StockSnapshot) models.Suggestion {
	best := models.Suggestion{Material: models.NoStockMaterial, Stock: 0}
	found := false

	for _, material := range snapshot.Materials() {
		stock := snapshot.Stock(material)
		if stock <= 0 {
			continue
		}
		if !found || stock < best.Stock {
			best = models.Suggestion{Material: material, Stock: stock}
			found = true
		}
	}

	if found {
		best.Level = Classify(best.Stock)
	} else {
		best.Level = models.StockCritical
	}
	return best
}

// Classify maps a stock quantity onto the display band.
func Classify(stock float64) models.StockLevel {
	switch {
	case stock <= 0:
		return models.StockCritical
	case stock < lowStockThreshold:
		return models.StockLow
	default:
		return models.StockStable
	}
}
