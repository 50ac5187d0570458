package handler

import "github.com/gin-gonic/gin"

// ListPaymentMethods returns the active payment methods
func (h *POSHandler) ListPaymentMethods(c *gin.Context) {
	methods, err := h.masterData.PaymentMethods(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, methods)
}

// ListBranches returns the active branches
func (h *POSHandler) ListBranches(c *gin.Context) {
	branches, err := h.masterData.Branches(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branches)
}

// ListPointsOfSale returns the active points of sale of a branch
func (h *POSHandler) ListPointsOfSale(c *gin.Context) {
	branchID, err := int64Param(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	points, err := h.masterData.PointsOfSale(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}
