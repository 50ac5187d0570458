package handler

import (
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AddCartItem adds one unit of a product after a live stock check
func (h *POSHandler) AddCartItem(c *gin.Context) {
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	t := h.terminal(c)
	line, err := t.AddItem(c.Request.Context(), req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, TerminalResponse[pos.CartLine]{Result: line, Terminal: t.Snapshot()})
}

// ScanCartItem adds one unit of the product matching a scanned code
func (h *POSHandler) ScanCartItem(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	t := h.terminal(c)
	line, err := t.AddByBarcode(c.Request.Context(), req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, TerminalResponse[pos.CartLine]{Result: line, Terminal: t.Snapshot()})
}

// UpdateCartItem changes the quantity and/or discount of a line. A quantity
// of zero removes the line.
func (h *POSHandler) UpdateCartItem(c *gin.Context) {
	productID, err := int64Param(c, "product_id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req dto.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.Quantity == nil && req.Discount == nil {
		h.HandleError(c, shared.NewValidationError("Quantity or discount is required"))
		return
	}

	t := h.terminal(c)
	snapshot := t.Snapshot()
	if req.Quantity != nil {
		if snapshot, err = t.SetQuantity(productID, *req.Quantity); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.Discount != nil {
		if snapshot, err = t.SetDiscount(productID, req.Discount.Decimal); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.Success(c, snapshot)
}

// RemoveCartItem removes a line
func (h *POSHandler) RemoveCartItem(c *gin.Context) {
	productID, err := int64Param(c, "product_id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	snapshot, err := h.terminal(c).RemoveItem(productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

// ClearCart discards all lines and payments
func (h *POSHandler) ClearCart(c *gin.Context) {
	h.Success(c, h.terminal(c).ClearCart())
}
