package pos

import (
	"context"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CatalogGateway reads products and branch stock from the remote API
type CatalogGateway interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	BranchStock(ctx context.Context, branchID int64) ([]StockLevel, error)
	// UpdateStock creates or replaces the inventory row of a product at a branch
	UpdateStock(ctx context.Context, update StockUpdate) (*StockLevel, error)
}

// DrawerGateway drives drawer sessions on the remote API
type DrawerGateway interface {
	Open(ctx context.Context, pointOfSaleID int64, openingAmount decimal.Decimal) (*DrawerSession, error)
	// OwnOpen returns the session open under the current user, nil if none
	OwnOpen(ctx context.Context) (*DrawerSession, error)
	// ForPointOfSale returns the open session of a point of sale, nil if none
	ForPointOfSale(ctx context.Context, pointOfSaleID int64) (*DrawerSession, error)
	Close(ctx context.Context, sessionID int64, actualClosingAmount decimal.Decimal) (*DrawerSession, error)
}

// SalesGateway creates and queries sales on the remote API
type SalesGateway interface {
	CreateSale(ctx context.Context, payload CommitPayload, idempotencyKey string) (*Sale, error)
	GenerateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
	ListSales(ctx context.Context, filter SaleFilter) (shared.Paginated[Sale], error)
	GetSale(ctx context.Context, id int64) (*Sale, error)
	UpdateSaleStatus(ctx context.Context, id, statusID int64) (*Sale, error)
}

// ClientGateway looks up, registers and edits clients
type ClientGateway interface {
	SearchClients(ctx context.Context, search string) ([]Client, error)
	ListClients(ctx context.Context, filter ClientFilter) ([]Client, error)
	CreateClient(ctx context.Context, client Client) (*Client, error)
	UpdateClient(ctx context.Context, id int64, client Client) (*Client, error)
}

// MasterDataGateway reads reference data
type MasterDataGateway interface {
	PaymentMethods(ctx context.Context) ([]NamedRef, error)
	Branches(ctx context.Context) ([]NamedRef, error)
	PointsOfSale(ctx context.Context, branchID int64) ([]NamedRef, error)
	SaleStatuses(ctx context.Context) ([]NamedRef, error)
}
