package dto

import (
	"strings"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/shopspring/decimal"
)

// Amount is a cashier-entered money value. JSON numbers and strings are
// accepted, with a comma allowed as decimal separator.
type Amount struct {
	decimal.Decimal
}

// UnmarshalJSON parses the amount, failing with a validation error
func (a *Amount) UnmarshalJSON(data []byte) error {
	d, err := pos.ParseAmount(strings.Trim(strings.TrimSpace(string(data)), `"`))
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

// InitTerminalRequest overrides the configured default branch and point of sale
type InitTerminalRequest struct {
	BranchID      int64 `json:"branch_id" binding:"omitempty,min=1"`
	PointOfSaleID int64 `json:"point_of_sale_id" binding:"omitempty,min=1"`
}

// SelectBranchRequest switches the active branch
type SelectBranchRequest struct {
	BranchID int64 `json:"branch_id" binding:"required,min=1"`
}

// SelectPointOfSaleRequest switches the active point of sale
type SelectPointOfSaleRequest struct {
	PointOfSaleID int64 `json:"point_of_sale_id" binding:"required,min=1"`
}

// OpenDrawerRequest opens the drawer of the active point of sale
type OpenDrawerRequest struct {
	OpeningAmount *Amount `json:"opening_amount" binding:"required,gte=0"`
}

// CloseDrawerRequest closes a drawer session with the counted cash
type CloseDrawerRequest struct {
	SessionID           int64   `json:"session_id" binding:"required,min=1"`
	ActualClosingAmount *Amount `json:"actual_closing_amount" binding:"required,gte=0"`
}

// SearchProductsQuery is the free-text catalog search
type SearchProductsQuery struct {
	Q     string `form:"q" binding:"max=100"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// LowStockQuery picks the branch of the low stock report; the terminal's
// branch is used when empty
type LowStockQuery struct {
	BranchID int64 `form:"branch_id" binding:"omitempty,min=1"`
}

// UpdateStockRequest sets the stock of a product at the terminal's branch
type UpdateStockRequest struct {
	Current *Amount `json:"current" binding:"required,gte=0"`
	Minimum *Amount `json:"minimum" binding:"required,gte=0"`
}

// AddItemRequest adds one unit of a product
type AddItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
}

// ScanRequest adds one unit of the product matching a scanned code
type ScanRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}

// UpdateLineRequest changes the quantity and/or discount of a cart line
type UpdateLineRequest struct {
	Quantity *int64  `json:"quantity"`
	Discount *Amount `json:"discount" binding:"omitempty,gte=0"`
}

// AddPaymentRequest records a tender
type AddPaymentRequest struct {
	MethodID  int64   `json:"method_id" binding:"required,min=1"`
	Amount    *Amount `json:"amount" binding:"required,gt=0"`
	Reference string  `json:"reference" binding:"max=100"`
}

// LookupClientQuery finds a client by exact tax id
type LookupClientQuery struct {
	TaxID string `form:"tax_id" binding:"required,max=20"`
}

// SelectClientRequest selects the client of the sale by tax id
type SelectClientRequest struct {
	TaxID string `json:"tax_id" binding:"required,max=20"`
}

// CreateClientRequest registers a client
type CreateClientRequest struct {
	TaxID     string `json:"tax_id" binding:"required,max=20"`
	Name      string `json:"name" binding:"required,max=200"`
	LegalName string `json:"legal_name" binding:"max=200"`
	Email     string `json:"email" binding:"omitempty,email"`
}

// ListClientsQuery pages through the client directory
type ListClientsQuery struct {
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UpdateClientRequest replaces the editable fields of a client
type UpdateClientRequest struct {
	TaxID     string `json:"tax_id" binding:"required,max=20"`
	Name      string `json:"name" binding:"required,max=200"`
	LegalName string `json:"legal_name" binding:"max=200"`
	Email     string `json:"email" binding:"omitempty,email"`
}

// InvoiceRequest optionally overrides the invoice identity captured at commit
type InvoiceRequest struct {
	TaxID     string `json:"tax_id" binding:"max=20"`
	LegalName string `json:"legal_name" binding:"max=200"`
}

// ListSalesQuery filters the sales history
type ListSalesQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	BranchID int64  `form:"branch_id" binding:"omitempty,min=1"`
	StatusID int64  `form:"status_id" binding:"omitempty,min=1"`
}

// AttemptsQuery lists the caller's recent commit attempts
type AttemptsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}
