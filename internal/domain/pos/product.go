package pos

import (
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// NamedRef is the resolved {id, name} shape of a branch, point of sale,
// city, payment method or user. The backend adapter normalizes both the
// bare-id and embedded-object forms into it.
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// IsZero reports whether the reference points at nothing
func (r NamedRef) IsZero() bool {
	return r.ID == 0
}

// Product is a catalog entry as returned by the remote catalog
type Product struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	AverageCost decimal.Decimal `json:"average_cost"`
	Active      bool            `json:"active"`
}

// StockLevel is one inventory row for a branch
type StockLevel struct {
	ID        int64           `json:"id,omitempty"`
	ProductID int64           `json:"product_id"`
	BranchID  int64           `json:"branch_id"`
	Current   decimal.Decimal `json:"current"`
	Minimum   decimal.Decimal `json:"minimum"`
}

// StockUpdate sets the stock and minimum of a product at a branch
type StockUpdate struct {
	BranchID  int64
	ProductID int64
	Current   decimal.Decimal
	Minimum   decimal.Decimal
}

// Validate requires a branch, a product and non-negative quantities
func (u StockUpdate) Validate() error {
	if u.BranchID == 0 {
		return shared.NewValidationError("Select a branch")
	}
	if u.ProductID == 0 {
		return shared.NewValidationError("Product is required")
	}
	if u.Current.IsNegative() || u.Minimum.IsNegative() {
		return shared.NewValidationError("Stock cannot be negative")
	}
	return nil
}

// ProductWithStock is a product annotated with the stock of the active branch
type ProductWithStock struct {
	Product
	Stock        decimal.Decimal `json:"stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
}

// IsLow reports whether the stock is at or below the configured minimum
func (p ProductWithStock) IsLow() bool {
	return p.Stock.LessThanOrEqual(p.MinimumStock)
}

// MergeStock annotates products with the matching stock rows.
// Products without an inventory row get zero stock.
func MergeStock(products []Product, levels []StockLevel) []ProductWithStock {
	byProduct := make(map[int64]StockLevel, len(levels))
	for _, l := range levels {
		byProduct[l.ProductID] = l
	}
	result := make([]ProductWithStock, 0, len(products))
	for _, p := range products {
		item := ProductWithStock{Product: p, Stock: decimal.Zero, MinimumStock: decimal.Zero}
		if l, ok := byProduct[p.ID]; ok {
			item.Stock = l.Current
			item.MinimumStock = l.Minimum
		}
		result = append(result, item)
	}
	return result
}

// StockFor returns the current stock of a product among levels, zero if absent
func StockFor(levels []StockLevel, productID int64) decimal.Decimal {
	for _, l := range levels {
		if l.ProductID == productID {
			return l.Current
		}
	}
	return decimal.Zero
}
