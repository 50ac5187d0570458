package pos

import (
	"github.com/erp/pos/internal/domain/pos"
	"github.com/shopspring/decimal"
)

// TerminalDefaults is the branch and point of sale selected on init when
// the cashier has no drawer open anywhere
type TerminalDefaults struct {
	BranchID      int64
	PointOfSaleID int64
}

// TerminalSnapshot is the full state a cashier UI renders
type TerminalSnapshot struct {
	CashierID     string               `json:"cashier_id"`
	Branch        pos.NamedRef         `json:"branch"`
	PointOfSale   pos.NamedRef         `json:"point_of_sale"`
	Drawer        pos.DrawerStatusView `json:"drawer"`
	Lines         []pos.CartLine       `json:"lines"`
	Totals        pos.CartTotals       `json:"totals"`
	Payments      []pos.Payment        `json:"payments"`
	PaymentTotals pos.PaymentTotals    `json:"payment_totals"`
	CanSettle     bool                 `json:"can_settle"`
	Client        *pos.Client          `json:"client,omitempty"`
	LastSale      *pos.LastSale        `json:"last_sale,omitempty"`
	Submitting    bool                 `json:"submitting"`
}

// AddPaymentInput is a tender entered by the cashier
type AddPaymentInput struct {
	MethodID  int64
	Amount    decimal.Decimal
	Reference string
}

// CreateClientInput registers a client
type CreateClientInput struct {
	TaxID     string
	Name      string
	LegalName string
	Email     string
}

// CommitResult is the outcome of a successful sale commit
type CommitResult struct {
	Sale           *pos.Sale       `json:"sale"`
	IdempotencyKey string          `json:"idempotency_key"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	Change         decimal.Decimal `json:"change"`
}

// InvoiceOverride replaces the invoice identity captured at commit
type InvoiceOverride struct {
	TaxID     string
	LegalName string
}
