package handler

import (
	"strconv"

	apppos "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AddPayment records a tender against the draft
func (h *POSHandler) AddPayment(c *gin.Context) {
	var req dto.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	t := h.terminal(c)
	payment, err := t.AddPayment(c.Request.Context(), apppos.AddPaymentInput{
		MethodID:  req.MethodID,
		Amount:    req.Amount.Decimal,
		Reference: req.Reference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, TerminalResponse[pos.Payment]{Result: payment, Terminal: t.Snapshot()})
}

// RemovePayment removes the payment at the zero-based index
func (h *POSHandler) RemovePayment(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		h.HandleError(c, shared.NewValidationError("Invalid payment index"))
		return
	}
	snapshot, err := h.terminal(c).RemovePayment(index)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}
