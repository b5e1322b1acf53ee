package ledger

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
)

func rec(material string, action models.TransactionAction, qty float64, off time.Duration) models.TransactionRecord {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return models.TransactionRecord{
		MaterialName: material,
		Action:       action,
		Quantity:     qty,
		Timestamp:    base.Add(off),
		User:         "tester",
	}
}

func TestComputeSnapshotAddThenConsume(t *testing.T) {
	snap := ComputeSnapshot([]models.TransactionRecord{
		rec("RiceHusks", models.ActionAdd, 100, 0),
		rec("RiceHusks", models.ActionConsume, 30, time.Minute),
	})

	assert.InDelta(t, 70, snap.Stock("RiceHusks"), 1e-9)

	sug := SuggestRestock(snap)
	assert.Equal(t, "RiceHusks", sug.Material)
	assert.InDelta(t, 70, sug.Stock, 1e-9)
	assert.Equal(t, models.StockStable, sug.Level)
}

func TestComputeSnapshotEmpty(t *testing.T) {
	snap := ComputeSnapshot(nil)
	assert.Zero(t, snap.Len())

	sug := SuggestRestock(snap)
	assert.Equal(t, models.NoStockMaterial, sug.Material)
	assert.Zero(t, sug.Stock)
}

func TestComputeSnapshotKeepsZeroTotalMaterials(t *testing.T) {
	snap := ComputeSnapshot([]models.TransactionRecord{
		rec("PiliShells", models.ActionAdd, 20, 0),
		rec("PiliShells", models.ActionConsume, 20, time.Minute),
	})

	require.True(t, snap.Has("PiliShells"))
	assert.InDelta(t, 0, snap.Stock("PiliShells"), 1e-9)

	// Zero-stock materials exist in the snapshot but never win a suggestion.
	sug := SuggestRestock(snap)
	assert.Equal(t, models.NoStockMaterial, sug.Material)
}

func TestComputeSnapshotOrderIndependentSum(t *testing.T) {
	records := []models.TransactionRecord{
		rec("RiceHusks", models.ActionAdd, 100, 0),
		rec("RiceHusks", models.ActionConsume, 30, time.Minute),
		rec("RiceHusks", models.ActionAdd, 5.5, 2*time.Minute),
		rec("RiceHusks", models.ActionConsume, 10, 3*time.Minute),
	}

	want := ComputeSnapshot(records).Stock("RiceHusks")

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]models.TransactionRecord, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := ComputeSnapshot(shuffled).Stock("RiceHusks")
		assert.InDelta(t, want, got, 1e-9)
	}
}

func TestComputeSnapshotMalformedQuantityDegradesToZero(t *testing.T) {
	snap := ComputeSnapshot([]models.TransactionRecord{
		rec("RiceHusks", models.ActionAdd, 100, 0),
		rec("RiceHusks", models.ActionConsume, math.NaN(), time.Minute),
		rec("CoconutCoir", models.ActionAdd, math.Inf(1), 2*time.Minute),
	})

	assert.InDelta(t, 100, snap.Stock("RiceHusks"), 1e-9)
	assert.InDelta(t, 0, snap.Stock("CoconutCoir"), 1e-9)
}

func TestComputeSnapshotCanGoNegative(t *testing.T) {
	// Deleting the Add that backed a Consume legitimately leaves the fold
	// negative; the aggregator reports it rather than clamping.
	snap := ComputeSnapshot([]models.TransactionRecord{
		rec("RiceHusks", models.ActionConsume, 30, 0),
	})
	assert.InDelta(t, -30, snap.Stock("RiceHusks"), 1e-9)

	sug := SuggestRestock(snap)
	assert.Equal(t, models.NoStockMaterial, sug.Material)
}

func TestSuggestRestockPicksLowestPositive(t *testing.T) {
	snap := ComputeSnapshot([]models.TransactionRecord{
		rec("PiliShells", models.ActionAdd, 20, 0),
		rec("CoconutCoir", models.ActionAdd, 5, time.Minute),
	})

	sug := SuggestRestock(snap)
	assert.Equal(t, "CoconutCoir", sug.Material)
	assert.InDelta(t, 5, sug.Stock, 1e-9)
	assert.Equal(t, models.StockLow, sug.Level)
}

func TestSuggestRestockNeverPicksNonPositive(t *testing.T) {
	snap := ComputeSnapshot([]models.TransactionRecord{
		rec("Bagasse", models.ActionConsume, 10, 0),
		rec("PiliShells", models.ActionAdd, 200, time.Minute),
	})

	sug := SuggestRestock(snap)
	assert.Equal(t, "PiliShells", sug.Material)
	assert.Equal(t, models.StockStable, sug.Level)
}

func TestSuggestRestockTieBreaksFirstEncountered(t *testing.T) {
	snap := ComputeSnapshot([]models.TransactionRecord{
		rec("Bagasse", models.ActionAdd, 12, 0),
		rec("CornCobs", models.ActionAdd, 12, time.Minute),
	})

	sug := SuggestRestock(snap)
	assert.Equal(t, "Bagasse", sug.Material)
}

func TestClassifyBands(t *testing.T) {
	assert.Equal(t, models.StockCritical, Classify(0))
	assert.Equal(t, models.StockCritical, Classify(-3))
	assert.Equal(t, models.StockLow, Classify(0.1))
	assert.Equal(t, models.StockLow, Classify(49.9))
	assert.Equal(t, models.StockStable, Classify(50))
	assert.Equal(t, models.StockStable, Classify(500))
}
