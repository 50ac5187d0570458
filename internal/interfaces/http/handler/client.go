package handler

import (
	"strings"

	apppos "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// LookupClient finds a client by exact tax id without selecting it
func (h *POSHandler) LookupClient(c *gin.Context) {
	var q dto.LookupClientQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	taxID := strings.TrimSpace(q.TaxID)
	candidates, err := h.clients.SearchClients(c.Request.Context(), taxID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	found, ok := pos.FindByTaxID(candidates, taxID)
	if !ok {
		h.HandleError(c, shared.NewDomainError(shared.CodeNotFound, "No client with tax id "+taxID))
		return
	}
	h.Success(c, found)
}

// CreateClient registers a client and selects it for the sale
func (h *POSHandler) CreateClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	client, err := h.terminal(c).CreateClient(c.Request.Context(), apppos.CreateClientInput{
		TaxID:     req.TaxID,
		Name:      req.Name,
		LegalName: req.LegalName,
		Email:     req.Email,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// SelectClient selects the client of the sale by tax id
func (h *POSHandler) SelectClient(c *gin.Context) {
	var req dto.SelectClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	t := h.terminal(c)
	if _, err := t.LookupClient(c.Request.Context(), req.TaxID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, t.Snapshot())
}

// ClearClient unselects the client
func (h *POSHandler) ClearClient(c *gin.Context) {
	h.Success(c, h.terminal(c).ClearClient())
}

// ListClients pages through the client directory
func (h *POSHandler) ListClients(c *gin.Context) {
	var q dto.ListClientsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	clients, err := h.directory.List(c.Request.Context(), pos.ClientFilter{
		Search:   strings.TrimSpace(q.Search),
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, clients)
}

// UpdateClient edits a client. A selected client with the same id is refreshed
// so the next sale and invoice use the new data.
func (h *POSHandler) UpdateClient(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	updated, err := h.directory.Update(c.Request.Context(), id, pos.Client{
		TaxID:     req.TaxID,
		Name:      req.Name,
		LegalName: req.LegalName,
		Email:     req.Email,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.terminal(c).RefreshClient(*updated)
	h.Success(c, updated)
}
