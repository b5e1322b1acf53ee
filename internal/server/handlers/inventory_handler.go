package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
	"github.com/ecovolt-ph/ecovolt-backend/internal/service/inventory"
)

// InventoryHandler exposes the feedstock ledger endpoints.
type InventoryHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc *inventory.Service, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger}
}

// State returns the current stock snapshot, suggestion and the record window.
func (h *InventoryHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.State())
}

type createTransactionRequest struct {
	MaterialName string  `json:"material_name" binding:"required"`
	Action       string  `json:"action" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required"`
}

// CreateTransaction validates and appends one ledger record, attributed to
// the authenticated operator.
func (h *InventoryHandler) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user := c.GetString(CtxDisplayName)
	if user == "" {
		user = "Operator (Web)"
	}

	rec, err := h.svc.Record(c.Request.Context(), req.MaterialName, models.TransactionAction(req.Action), req.Quantity, user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": rec})
}

// DeleteTransaction removes one ledger record whole.
func (h *InventoryHandler) DeleteTransaction(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Suggestion returns only the restock hint for lightweight polling.
func (h *InventoryHandler) Suggestion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestion": h.svc.Suggestion()})
}
