package handler

import (
	apppos "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// GetTerminal returns the cashier's terminal state
func (h *POSHandler) GetTerminal(c *gin.Context) {
	h.Success(c, h.terminal(c).Snapshot())
}

// InitTerminal resumes the cashier's open drawer or selects the default
// branch and point of sale. The body is optional.
func (h *POSHandler) InitTerminal(c *gin.Context) {
	var req dto.InitTerminalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	defaults := h.defaults
	if req.BranchID != 0 {
		defaults = apppos.TerminalDefaults{BranchID: req.BranchID, PointOfSaleID: req.PointOfSaleID}
	}

	t := h.terminals.Get(middleware.GetCashierID(c))
	snapshot, err := t.Init(c.Request.Context(), defaults)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

// SelectBranch switches the active branch
func (h *POSHandler) SelectBranch(c *gin.Context) {
	var req dto.SelectBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	snapshot, err := h.terminal(c).SelectBranch(c.Request.Context(), req.BranchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

// SelectPointOfSale switches the active point of sale
func (h *POSHandler) SelectPointOfSale(c *gin.Context) {
	var req dto.SelectPointOfSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	snapshot, err := h.terminal(c).SelectPointOfSale(c.Request.Context(), req.PointOfSaleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}
