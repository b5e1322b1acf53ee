package inventory

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
	"github.com/ecovolt-ph/ecovolt-backend/internal/realtime"
)

type fakeTransactionStore struct {
	mu      sync.Mutex
	nextID  int
	records []models.TransactionRecord
}

func (f *fakeTransactionStore) InsertTransaction(_ context.Context, rec models.TransactionRecord) (models.TransactionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec.ID = string(rune('a' + f.nextID))
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeTransactionStore) ListRecentTransactions(_ context.Context, limit int) ([]models.TransactionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.TransactionRecord, len(f.records))
	copy(out, f.records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeTransactionStore) DeleteTransaction(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rec := range f.records {
		if rec.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return &models.NotFoundError{Entity: "transaction", ID: id}
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *capturingPublisher) Publish(_ context.Context, ev realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newTestService(t *testing.T) (*Service, *fakeTransactionStore, *capturingPublisher) {
	t.Helper()
	store := &fakeTransactionStore{}
	pub := &capturingPublisher{}
	svc := NewService(store, pub, 50, zap.NewNop())
	require.NoError(t, svc.Refresh(context.Background()))
	return svc, store, pub
}

func TestRecordAddAndConsume(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, "RiceHusks", models.ActionAdd, 100, "admin")
	require.NoError(t, err)
	_, err = svc.Record(ctx, "RiceHusks", models.ActionConsume, 30, "admin")
	require.NoError(t, err)

	state := svc.State()
	assert.InDelta(t, 70, state.Stocks["RiceHusks"], 1e-9)
	assert.Equal(t, "RiceHusks", state.Suggestion.Material)
	assert.Equal(t, models.StockStable, state.Suggestion.Level)
	assert.Len(t, store.records, 2)
}

func TestRecordRejectsBlankMaterial(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, err := svc.Record(context.Background(), "   ", models.ActionAdd, 5, "admin")

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, store.records)
}

func TestRecordRejectsNonPositiveQuantity(t *testing.T) {
	svc, store, _ := newTestService(t)

	for _, qty := range []float64{0, -3} {
		_, err := svc.Record(context.Background(), "RiceHusks", models.ActionAdd, qty, "admin")
		var vErr *models.ValidationError
		require.ErrorAs(t, err, &vErr)
	}
	assert.Empty(t, store.records)
}

func TestRecordRejectsUnknownAction(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, err := svc.Record(context.Background(), "RiceHusks", "Discard", 5, "admin")

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, store.records)
}

func TestRecordConsumeInsufficientStockWritesNothing(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, "RiceHusks", models.ActionAdd, 30, "admin")
	require.NoError(t, err)

	_, err = svc.Record(ctx, "RiceHusks", models.ActionConsume, 50, "admin")
	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "insufficient stock")

	assert.Len(t, store.records, 1)
	assert.InDelta(t, 30, svc.State().Stocks["RiceHusks"], 1e-9)
}

func TestDeleteRecomputesAsIfRecordNeverExisted(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	added, err := svc.Record(ctx, "RiceHusks", models.ActionAdd, 100, "admin")
	require.NoError(t, err)
	_, err = svc.Record(ctx, "RiceHusks", models.ActionConsume, 30, "admin")
	require.NoError(t, err)

	// Deleting the Add leaves only the Consume: the folded stock goes
	// negative, the unguarded-delete gap the dashboard surfaces as-is.
	require.NoError(t, svc.Delete(ctx, added.ID))

	state := svc.State()
	assert.InDelta(t, -30, state.Stocks["RiceHusks"], 1e-9)
	assert.Equal(t, models.NoStockMaterial, state.Suggestion.Material)
}

func TestDeleteUnknownIDReturnsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Delete(context.Background(), "missing")

	var nfErr *models.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestMutationsPublishInventoryEvents(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	warmup := pub.count()

	added, err := svc.Record(ctx, "PiliShells", models.ActionAdd, 20, "admin")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, added.ID))

	assert.Equal(t, warmup+2, pub.count())
	last := pub.events[len(pub.events)-1]
	assert.Equal(t, realtime.ChannelInventory, last.Channel)
	assert.Equal(t, realtime.EventInventoryChanged, last.Type)
}

func TestSuggestionPicksLowestPositiveStock(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, "PiliShells", models.ActionAdd, 20, "admin")
	require.NoError(t, err)
	_, err = svc.Record(ctx, "CoconutCoir", models.ActionAdd, 5, "admin")
	require.NoError(t, err)

	sug := svc.Suggestion()
	assert.Equal(t, "CoconutCoir", sug.Material)
	assert.InDelta(t, 5, sug.Stock, 1e-9)
	assert.Equal(t, models.StockLow, sug.Level)
}
