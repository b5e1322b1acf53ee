package inventory

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
	"github.com/ecovolt-ph/ecovolt-backend/internal/ledger"
	"github.com/ecovolt-ph/ecovolt-backend/internal/realtime"
	"github.com/ecovolt-ph/ecovolt-backend/internal/repository/mongodb"
)

// State is the derived inventory view published after every change.
type State struct {
	Stocks     map[string]float64        `json:"stocks"`
	Suggestion models.Suggestion         `json:"suggestion"`
	Records    []models.TransactionRecord `json:"records"`
}

// Service owns the feedstock ledger: it validates and persists transactions,
// keeps the latest derived snapshot cached for display, and notifies
// subscribers whenever the record set changes.
type Service struct {
	store      mongodb.TransactionStore
	publisher  realtime.Publisher
	logger     *zap.Logger
	windowSize int

	mu         sync.RWMutex
	records    []models.TransactionRecord
	snapshot   *models.StockSnapshot
	suggestion models.Suggestion
}

// NewService wires a new inventory service. Call Refresh once after
// construction to warm the snapshot cache.
func NewService(store mongodb.TransactionStore, publisher realtime.Publisher, windowSize int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		publisher:  publisher,
		logger:     logger,
		windowSize: windowSize,
		snapshot:   models.NewStockSnapshot(),
		suggestion: models.Suggestion{Material: models.NoStockMaterial, Level: models.StockCritical},
	}
}

// Record validates and appends one ledger entry. The insufficient-stock check
// is advisory: it reads the latest cached snapshot, so two concurrent
// consumers can both pass it and leave the folded stock negative.
func (s *Service) Record(ctx context.Context, materialName string, action models.TransactionAction, quantity float64, user string) (models.TransactionRecord, error) {
	materialName = strings.TrimSpace(materialName)
	if materialName == "" {
		return models.TransactionRecord{}, models.NewValidationError("material name must not be blank")
	}
	if !action.Valid() {
		return models.TransactionRecord{}, models.NewValidationError("unknown action %q", action)
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return models.TransactionRecord{}, models.NewValidationError("quantity must be a positive number")
	}

	if action == models.ActionConsume {
		current := s.currentStock(materialName)
		if current < quantity {
			return models.TransactionRecord{}, models.NewValidationError(
				"insufficient stock for %s: have %.1fkg, need %.1fkg", materialName, current, quantity)
		}
	}

	rec := models.TransactionRecord{
		MaterialName: materialName,
		Action:       action,
		Quantity:     quantity,
		Timestamp:    time.Now().UTC(),
		User:         user,
	}
	created, err := s.store.InsertTransaction(ctx, rec)
	if err != nil {
		return models.TransactionRecord{}, err
	}

	s.logger.Info("transaction recorded",
		zap.String("material", materialName),
		zap.String("action", string(action)),
		zap.Float64("quantity", quantity),
		zap.String("user", user))

	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("snapshot refresh after record failed", zap.Error(err))
	}
	return created, nil
}

// Delete removes one ledger entry whole. The next snapshot simply no longer
// includes it, which can legitimately leave a material negative.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.logger.Info("transaction deleted", zap.String("id", id))

	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("snapshot refresh after delete failed", zap.Error(err))
	}
	return nil
}

// Refresh reloads the bounded record window, recomputes the snapshot from
// scratch and publishes the new state.
func (s *Service) Refresh(ctx context.Context) error {
	records, err := s.store.ListRecentTransactions(ctx, s.windowSize)
	if err != nil {
		return err
	}

	snapshot := ledger.ComputeSnapshot(records)
	suggestion := ledger.SuggestRestock(snapshot)

	s.mu.Lock()
	s.records = records
	s.snapshot = snapshot
	s.suggestion = suggestion
	s.mu.Unlock()

	if s.publisher != nil {
		ev := realtime.Event{
			Channel: realtime.ChannelInventory,
			Type:    realtime.EventInventoryChanged,
			Data:    s.State(),
		}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("inventory event publish failed", zap.Error(err))
		}
	}
	return nil
}

// State returns the latest derived view.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.TransactionRecord, len(s.records))
	copy(records, s.records)
	return State{
		Stocks:     s.snapshot.Totals(),
		Suggestion: s.suggestion,
		Records:    records,
	}
}

// Suggestion returns the cached restock suggestion.
func (s *Service) Suggestion() models.Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suggestion
}

func (s *Service) currentStock(material string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Stock(material)
}
