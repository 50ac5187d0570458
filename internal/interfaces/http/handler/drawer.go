package handler

import (
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// GetDrawer re-reads the drawer of the active point of sale
func (h *POSHandler) GetDrawer(c *gin.Context) {
	view, err := h.terminal(c).DrawerStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// OpenDrawer opens a drawer session with the counted opening cash
func (h *POSHandler) OpenDrawer(c *gin.Context) {
	var req dto.OpenDrawerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	session, err := h.terminal(c).OpenDrawer(c.Request.Context(), req.OpeningAmount.Decimal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// CloseDrawer closes the session and returns its reconciliation
func (h *POSHandler) CloseDrawer(c *gin.Context) {
	var req dto.CloseDrawerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	session, err := h.terminal(c).CloseDrawer(c.Request.Context(), req.SessionID, req.ActualClosingAmount.Decimal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}
