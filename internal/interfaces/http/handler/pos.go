package handler

import (
	apppos "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// POSDeps are the application services behind the POS endpoints
type POSDeps struct {
	Terminals    *apppos.TerminalRegistry
	Orchestrator *apppos.SaleOrchestrator
	Catalog      *apppos.CatalogService
	MasterData   *apppos.MasterDataService
	History      *apppos.SalesHistoryService
	Clients      pos.ClientGateway
	Directory    *apppos.ClientService
	Defaults     apppos.TerminalDefaults
}

// POSHandler serves the cashier terminal API. Every request operates on the
// terminal of the cashier keyed by the CashierIdentity middleware.
type POSHandler struct {
	BaseHandler
	terminals    *apppos.TerminalRegistry
	orchestrator *apppos.SaleOrchestrator
	catalog      *apppos.CatalogService
	masterData   *apppos.MasterDataService
	history      *apppos.SalesHistoryService
	clients      pos.ClientGateway
	directory    *apppos.ClientService
	defaults     apppos.TerminalDefaults
}

// NewPOSHandler creates a new POSHandler
func NewPOSHandler(deps POSDeps) *POSHandler {
	return &POSHandler{
		terminals:    deps.Terminals,
		orchestrator: deps.Orchestrator,
		catalog:      deps.Catalog,
		masterData:   deps.MasterData,
		history:      deps.History,
		clients:      deps.Clients,
		directory:    deps.Directory,
		defaults:     deps.Defaults,
	}
}

func (h *POSHandler) terminal(c *gin.Context) *apppos.Terminal {
	t := h.terminals.Get(middleware.GetCashierID(c))
	t.Resume(c.Request.Context())
	return t
}

// TerminalResponse pairs the result of a cart or payment operation with the
// refreshed terminal state
type TerminalResponse[T any] struct {
	Result   T                       `json:"result"`
	Terminal apppos.TerminalSnapshot `json:"terminal"`
}
