package handler

import (
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SearchProducts searches the catalog, annotated with the active branch's stock
func (h *POSHandler) SearchProducts(c *gin.Context) {
	var q dto.SearchProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	branchID := h.terminal(c).Snapshot().Branch.ID
	results, err := h.catalog.SearchByText(c.Request.Context(), branchID, q.Q, q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// GetProductByBarcode resolves a scanned code without touching the cart
func (h *POSHandler) GetProductByBarcode(c *gin.Context) {
	branchID := h.terminal(c).Snapshot().Branch.ID
	match, err := h.catalog.SearchByBarcode(c.Request.Context(), branchID, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, match)
}

// ListLowStock lists the products at or below their minimum stock
func (h *POSHandler) ListLowStock(c *gin.Context) {
	var q dto.LowStockQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	branchID := q.BranchID
	if branchID == 0 {
		branchID = h.terminal(c).Snapshot().Branch.ID
	}
	products, err := h.catalog.LowStock(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// UpdateStock sets the stock and minimum of a product at the terminal's branch
func (h *POSHandler) UpdateStock(c *gin.Context) {
	productID, err := int64Param(c, "product_id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req dto.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	level, err := h.catalog.AdjustStock(c.Request.Context(), pos.StockUpdate{
		BranchID:  h.terminal(c).Snapshot().Branch.ID,
		ProductID: productID,
		Current:   req.Current.Decimal,
		Minimum:   req.Minimum.Decimal,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}
