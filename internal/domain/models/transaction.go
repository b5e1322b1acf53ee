package models

import "time"

// TransactionAction enumerates the two feedstock ledger movements.
type TransactionAction string

const (
	ActionAdd     TransactionAction = "Add"
	ActionConsume TransactionAction = "Consume"
)

// Valid reports whether the action is one of the known movements.
func (a TransactionAction) Valid() bool {
	return a == ActionAdd || a == ActionConsume
}

// TransactionRecord is one immutable entry in the feedstock ledger. Records
// are only ever created or deleted whole; stock is never stored, it is folded
// from the record sequence.
type TransactionRecord struct {
	ID           string            `bson:"_id,omitempty" json:"id"`
	MaterialName string            `bson:"material_name" json:"material_name"`
	Action       TransactionAction `bson:"action" json:"action"`
	Quantity     float64           `bson:"quantity" json:"quantity"`
	Timestamp    time.Time         `bson:"timestamp" json:"timestamp"`
	User         string            `bson:"user" json:"user"`
}

// StockLevel classification bands for display.
type StockLevel string

const (
	StockCritical StockLevel = "critical"
	StockLow      StockLevel = "low"
	StockStable   StockLevel = "stable"
)

// Suggestion is the single restock hint derived from a snapshot: the material
// with the lowest positive stock.
type Suggestion struct {
	Material string     `json:"material"`
	Stock    float64    `json:"stock"`
	Level    StockLevel `json:"level"`
}

// NoStockMaterial is the sentinel material name returned when no material has
// positive stock.
const NoStockMaterial = "No Stock/Logs"

// StockSnapshot maps material names to their signed running totals. Insertion
// order is preserved so iteration (and suggestion tie-breaks) stay
// deterministic for a given record order.
type StockSnapshot struct {
	totals map[string]float64
	order  []string
}

// NewStockSnapshot returns an empty snapshot.
func NewStockSnapshot() *StockSnapshot {
	return &StockSnapshot{totals: make(map[string]float64)}
}

// Apply adds delta to the material's running total, registering the material
// on first sight.
func (s *StockSnapshot) Apply(material string, delta float64) {
	if _, seen := s.totals[material]; !seen {
		s.order = append(s.order, material)
	}
	s.totals[material] += delta
}

// Stock returns the current total for a material, zero when absent.
func (s *StockSnapshot) Stock(material string) float64 {
	if s == nil {
		return 0
	}
	return s.totals[material]
}

// Has reports whether the material appeared in at least one record.
func (s *StockSnapshot) Has(material string) bool {
	if s == nil {
		return false
	}
	_, ok := s.totals[material]
	return ok
}

// Materials returns material names in first-encountered order.
func (s *StockSnapshot) Materials() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of distinct materials.
func (s *StockSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Totals returns a plain map copy for serialization.
func (s *StockSnapshot) Totals() map[string]float64 {
	out := make(map[string]float64, len(s.totals))
	for k, v := range s.totals {
		out[k] = v
	}
	return out
}
