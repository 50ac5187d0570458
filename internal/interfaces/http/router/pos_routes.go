package router

import (
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// NewPOSRoutes builds the /pos route group. mw runs before every handler,
// normally the cashier identity middleware.
func NewPOSRoutes(h *handler.POSHandler, mw ...gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("pos", "/pos").Use(mw...)

	g.GET("/terminal", h.GetTerminal).
		POST("/terminal/init", h.InitTerminal).
		PUT("/terminal/branch", h.SelectBranch).
		PUT("/terminal/point-of-sale", h.SelectPointOfSale).
		PUT("/terminal/client", h.SelectClient).
		DELETE("/terminal/client", h.ClearClient)

	g.GET("/drawer", h.GetDrawer).
		POST("/drawer/open", h.OpenDrawer).
		POST("/drawer/close", h.CloseDrawer)

	g.GET("/products/search", h.SearchProducts).
		GET("/products/barcode/:code", h.GetProductByBarcode).
		GET("/products/low-stock", h.ListLowStock).
		PUT("/products/:product_id/stock", h.UpdateStock)

	g.POST("/cart/items", h.AddCartItem).
		POST("/cart/scan", h.ScanCartItem).
		PATCH("/cart/items/:product_id", h.UpdateCartItem).
		DELETE("/cart/items/:product_id", h.RemoveCartItem).
		DELETE("/cart", h.ClearCart)

	g.POST("/payments", h.AddPayment).
		DELETE("/payments/:index", h.RemovePayment)

	g.GET("/clients", h.ListClients).
		GET("/clients/lookup", h.LookupClient).
		POST("/clients", h.CreateClient).
		PUT("/clients/:id", h.UpdateClient)

	g.POST("/sales", h.CommitSale).
		GET("/sales", h.ListSales).
		GET("/sales/attempts", h.ListAttempts).
		GET("/sales/attempts/:id", h.GetAttempt).
		GET("/sales/:id", h.GetSale).
		POST("/sales/:id/invoice", h.GenerateInvoice).
		POST("/sales/:id/cancel", h.CancelSale)

	g.GET("/payment-methods", h.ListPaymentMethods).
		GET("/branches", h.ListBranches).
		GET("/branches/:id/points-of-sale", h.ListPointsOfSale)

	return g
}

// NewSystemRoutes builds the unauthenticated health routes
func NewSystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "").GET("/health", h.Health)
}
