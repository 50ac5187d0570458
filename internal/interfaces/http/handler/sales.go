package handler

import (
	"net/http"
	"time"

	apppos "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyKeyHeader optionally names a sale commit. Retrying with the
// same key after a success is rejected as a duplicate.
const IdempotencyKeyHeader = "Idempotency-Key"

const dateLayout = "2006-01-02"

// CommitSale submits the draft as one sale
func (h *POSHandler) CommitSale(c *gin.Context) {
	result, err := h.orchestrator.Commit(c.Request.Context(), h.terminal(c), c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header(IdempotencyKeyHeader, result.IdempotencyKey)
	h.Created(c, result)
}

// GenerateInvoice invoices a committed sale. The id "last" names the
// terminal's most recent sale.
func (h *POSHandler) GenerateInvoice(c *gin.Context) {
	var saleID int64
	if c.Param("id") != "last" {
		id, err := int64Param(c, "id")
		if err != nil {
			h.HandleError(c, err)
			return
		}
		saleID = id
	}
	var req dto.InvoiceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	invoice, err := h.orchestrator.GenerateInvoice(c.Request.Context(), h.terminal(c), saleID, apppos.InvoiceOverride{
		TaxID:     req.TaxID,
		LegalName: req.LegalName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// ListSales returns a page of the sales history
func (h *POSHandler) ListSales(c *gin.Context) {
	var q dto.ListSalesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	filter := pos.SaleFilter{
		BranchID: q.BranchID,
		StatusID: q.StatusID,
		Filter:   shared.Filter{Page: q.Page, PageSize: q.PageSize},
	}
	var err error
	if filter.From, err = parseDate("from", q.From); err != nil {
		h.HandleError(c, err)
		return
	}
	if filter.To, err = parseDate("to", q.To); err != nil {
		h.HandleError(c, err)
		return
	}

	page, err := h.history.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// GetSale returns one sale
func (h *POSHandler) GetSale(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sale, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// CancelSale moves a sale to the cancelled status
func (h *POSHandler) CancelSale(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sale, err := h.history.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// ListAttempts returns the caller's recent commit attempts from the journal
func (h *POSHandler) ListAttempts(c *gin.Context) {
	var q dto.AttemptsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	entries, err := h.history.Attempts(c.Request.Context(), middleware.GetCashierID(c), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// GetAttempt returns one journaled commit attempt of the cashier
func (h *POSHandler) GetAttempt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.HandleError(c, shared.NewValidationError("Invalid attempt id"))
		return
	}
	entry, err := h.history.Attempt(c.Request.Context(), middleware.GetCashierID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// parseDate reads an optional YYYY-MM-DD query value in local time
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return nil, shared.NewValidationError(field + " must be a date formatted as YYYY-MM-DD")
	}
	return &t, nil
}
