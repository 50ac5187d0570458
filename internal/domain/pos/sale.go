package pos

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleContext is where a sale happens
type SaleContext struct {
	BranchID      int64 `json:"branch_id"`
	PointOfSaleID int64 `json:"point_of_sale_id"`
}

// CommitLine is one line of a create-sale request
type CommitLine struct {
	ProductID int64           `json:"producto"`
	Quantity  int64           `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Discount  decimal.Decimal `json:"descuento"`
}

// CommitPayment is one payment of a create-sale request
type CommitPayment struct {
	MethodID  int64           `json:"metodo_pago"`
	Amount    decimal.Decimal `json:"monto"`
	Reference string          `json:"referencia"`
}

// CommitPayload is the single atomic create-sale request.
// Payments and ClientID are omitted from the wire when empty.
// DiscountTotal is the sum of the rounded line discounts.
type CommitPayload struct {
	BranchID      int64           `json:"sucursal"`
	PointOfSaleID int64           `json:"punto_venta"`
	ClientID      *int64          `json:"cliente,omitempty"`
	Lines         []CommitLine    `json:"detalles"`
	Payments      []CommitPayment `json:"pagos,omitempty"`
	DiscountTotal decimal.Decimal `json:"total_descuento"`
}

// BuildCommitPayload composes the draft into a create-sale request
func BuildCommitPayload(ctx SaleContext, cart *Cart, ledger *PaymentLedger, client *Client) (CommitPayload, error) {
	if ctx.BranchID == 0 || ctx.PointOfSaleID == 0 {
		return CommitPayload{}, shared.NewValidationError("Branch and point of sale are required")
	}
	if cart == nil || cart.IsEmpty() {
		return CommitPayload{}, shared.NewValidationError("The cart is empty")
	}

	payload := CommitPayload{
		BranchID:      ctx.BranchID,
		PointOfSaleID: ctx.PointOfSaleID,
		DiscountTotal: decimal.Zero,
	}
	if client != nil && client.ID != 0 {
		id := client.ID
		payload.ClientID = &id
	}
	for _, l := range cart.Lines() {
		line := CommitLine{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			UnitPrice: round2(l.UnitPrice),
			Discount:  round2(l.Discount),
		}
		payload.DiscountTotal = payload.DiscountTotal.Add(line.Discount)
		payload.Lines = append(payload.Lines, line)
	}
	if ledger != nil {
		for _, p := range ledger.Payments() {
			payload.Payments = append(payload.Payments, CommitPayment{
				MethodID:  p.Method.ID,
				Amount:    round2(p.Amount),
				Reference: p.Reference,
			})
		}
	}
	return payload, nil
}

// Net returns the sale net the payload represents
func (p CommitPayload) Net() decimal.Decimal {
	gross := decimal.Zero
	for _, l := range p.Lines {
		gross = gross.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return gross.Sub(p.DiscountTotal)
}

// Marshal encodes the payload for the wire
func (p CommitPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// ParseCommitPayload decodes a create-sale request
func ParseCommitPayload(data []byte) (CommitPayload, error) {
	var p CommitPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return CommitPayload{}, fmt.Errorf("failed to parse commit payload: %w", err)
	}
	return p, nil
}

// SaleLine is a persisted sale detail
type SaleLine struct {
	ID        int64           `json:"id"`
	Product   NamedRef        `json:"product"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SalePayment is a persisted sale payment
type SalePayment struct {
	ID        int64           `json:"id"`
	Method    NamedRef        `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// Sale is a sale record owned by the backend
type Sale struct {
	ID            int64           `json:"id"`
	Branch        NamedRef        `json:"branch"`
	PointOfSale   NamedRef        `json:"point_of_sale"`
	User          NamedRef        `json:"user"`
	Client        *NamedRef       `json:"client,omitempty"`
	Status        NamedRef        `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	GrossTotal    decimal.Decimal `json:"gross_total"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	NetTotal      decimal.Decimal `json:"net_total"`
	Lines         []SaleLine      `json:"lines,omitempty"`
	Payments      []SalePayment   `json:"payments,omitempty"`
}

// Invoice is the simulated electronic invoice of a sale
type Invoice struct {
	ID        int64     `json:"id"`
	SaleID    int64     `json:"sale_id"`
	TaxID     string    `json:"tax_id"`
	LegalName string    `json:"legal_name"`
	Number    string    `json:"number"`
	IssuedAt  time.Time `json:"issued_at"`
}

// InvoiceRequest asks the backend to invoice a sale
type InvoiceRequest struct {
	SaleID    int64  `json:"venta"`
	TaxID     string `json:"nit_ci"`
	LegalName string `json:"razon_social"`
}

// SaleFilter narrows the sales history
type SaleFilter struct {
	From     *time.Time
	To       *time.Time
	BranchID int64
	StatusID int64
	shared.Filter
}

// LastSale is the most recent committed sale of a terminal,
// kept for the follow-up invoice offer
type LastSale struct {
	ID          int64           `json:"id"`
	NetTotal    decimal.Decimal `json:"net_total"`
	Client      *Client         `json:"client,omitempty"`
	CommittedAt time.Time       `json:"committed_at"`
	Invoice     *Invoice        `json:"invoice,omitempty"`
}
