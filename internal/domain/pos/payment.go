package pos

import (
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Payment is one tender toward the sale
type Payment struct {
	Method    NamedRef        `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// PaymentTotals compares tendered amounts with the sale net.
// A negative Change means underpayment.
type PaymentTotals struct {
	TotalPaid decimal.Decimal `json:"total_paid"`
	Change    decimal.Decimal `json:"change"`
}

// PaymentLedger is the ordered sequence of payments of a sale draft
type PaymentLedger struct {
	payments []Payment
}

// NewPaymentLedger creates an empty ledger
func NewPaymentLedger() *PaymentLedger {
	return &PaymentLedger{}
}

// Add appends a payment rounded to cents. Amount must be positive.
func (p *PaymentLedger) Add(method NamedRef, amount decimal.Decimal, reference string) (Payment, error) {
	if method.IsZero() {
		return Payment{}, shared.NewValidationError("Payment method is required")
	}
	amount, err := toCents(amount)
	if err != nil {
		return Payment{}, err
	}
	if !amount.IsPositive() {
		return Payment{}, shared.NewValidationError("Payment amount must be greater than zero")
	}
	payment := Payment{Method: method, Amount: amount, Reference: reference}
	p.payments = append(p.payments, payment)
	return payment, nil
}

// Remove deletes the payment at index
func (p *PaymentLedger) Remove(index int) error {
	if index < 0 || index >= len(p.payments) {
		return shared.NewDomainError(shared.CodeNotFound, "Payment not found")
	}
	p.payments = append(p.payments[:index], p.payments[index+1:]...)
	return nil
}

// Clear removes all payments
func (p *PaymentLedger) Clear() {
	p.payments = nil
}

// Payments returns a copy of the payments in order
func (p *PaymentLedger) Payments() []Payment {
	result := make([]Payment, len(p.payments))
	copy(result, p.payments)
	return result
}

// Len returns the number of payments
func (p *PaymentLedger) Len() int {
	return len(p.payments)
}

// Totals returns total paid and change against saleNet
func (p *PaymentLedger) Totals(saleNet decimal.Decimal) PaymentTotals {
	paid := decimal.Zero
	for _, pay := range p.payments {
		paid = paid.Add(pay.Amount)
	}
	return PaymentTotals{
		TotalPaid: paid,
		Change:    paid.Sub(saleNet),
	}
}

// CanSettle reports whether the ledger covers saleNet for a non-empty cart
func (p *PaymentLedger) CanSettle(saleNet decimal.Decimal, lineCount int) bool {
	if lineCount <= 0 {
		return false
	}
	return p.Totals(saleNet).TotalPaid.GreaterThanOrEqual(saleNet)
}
