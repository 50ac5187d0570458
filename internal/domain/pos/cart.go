package pos

import (
	"fmt"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CartLine is one product in the sale draft.
// Subtotal is always UnitPrice*Quantity - Discount.
type CartLine struct {
	Product   Product         `json:"product"`
	Stock     decimal.Decimal `json:"stock"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Gross returns UnitPrice*Quantity
func (l *CartLine) Gross() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

func (l *CartLine) recalculate() {
	gross := l.Gross()
	if l.Discount.GreaterThan(gross) {
		l.Discount = gross
	}
	l.Subtotal = gross.Sub(l.Discount)
}

// CartTotals aggregates the cart
type CartTotals struct {
	Gross         decimal.Decimal `json:"gross"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	Net           decimal.Decimal `json:"net"`
}

// Cart is the in-memory line-item collection of a sale draft.
// Lines keep insertion order; one line per product.
type Cart struct {
	lines []*CartLine
}

// NewCart creates an empty cart
func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) find(productID int64) (int, *CartLine) {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i, l
		}
	}
	return -1, nil
}

// Add puts one unit of product into the cart, checked against liveStock
// freshly read for the active branch. An existing line is incremented.
func (c *Cart) Add(product Product, liveStock decimal.Decimal) (CartLine, error) {
	if product.ID == 0 {
		return CartLine{}, shared.NewValidationError("Product is required")
	}
	if liveStock.LessThan(decimal.NewFromInt(1)) {
		return CartLine{}, shared.NewDomainError(shared.CodeOutOfStock,
			fmt.Sprintf("Product %s is out of stock", product.Name))
	}

	if _, existing := c.find(product.ID); existing != nil {
		previous := existing.Stock
		existing.Stock = liveStock
		if err := c.SetQuantity(product.ID, existing.Quantity+1); err != nil {
			existing.Stock = previous
			return CartLine{}, err
		}
		return *existing, nil
	}

	line := &CartLine{
		Product:   product,
		Stock:     liveStock,
		Quantity:  1,
		UnitPrice: product.Price,
		Discount:  decimal.Zero,
	}
	line.recalculate()
	c.lines = append(c.lines, line)
	return *line, nil
}

// SetQuantity changes a line's quantity. Quantities above the line's cached
// stock are rejected without mutation; zero or less removes the line.
func (c *Cart) SetQuantity(productID int64, quantity int64) error {
	idx, line := c.find(productID)
	if line == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Product is not in the cart")
	}
	if quantity <= 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
		return nil
	}
	if decimal.NewFromInt(quantity).GreaterThan(line.Stock) {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock for %s: %s available", line.Product.Name, line.Stock.String()))
	}
	line.Quantity = quantity
	line.recalculate()
	return nil
}

// SetDiscount sets a line's absolute discount, rounded to cents. Negative
// discounts are rejected; discounts above the line gross are clamped to it.
func (c *Cart) SetDiscount(productID int64, discount decimal.Decimal) error {
	if discount.IsNegative() {
		return shared.NewValidationError("Discount cannot be negative")
	}
	discount, err := toCents(discount)
	if err != nil {
		return err
	}
	_, line := c.find(productID)
	if line == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Product is not in the cart")
	}
	line.Discount = discount
	line.recalculate()
	return nil
}

// Remove deletes the line for productID
func (c *Cart) Remove(productID int64) error {
	idx, line := c.find(productID)
	if line == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Product is not in the cart")
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	return nil
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
}

// Line returns a copy of the line for productID
func (c *Cart) Line(productID int64) (CartLine, bool) {
	_, line := c.find(productID)
	if line == nil {
		return CartLine{}, false
	}
	return *line, true
}

// Lines returns copies of all lines in insertion order
func (c *Cart) Lines() []CartLine {
	result := make([]CartLine, len(c.lines))
	for i, l := range c.lines {
		result[i] = *l
	}
	return result
}

// LineCount returns the number of lines
func (c *Cart) LineCount() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Totals computes gross, discount total and net
func (c *Cart) Totals() CartTotals {
	gross := decimal.Zero
	discount := decimal.Zero
	for _, l := range c.lines {
		gross = gross.Add(l.Gross())
		discount = discount.Add(l.Discount)
	}
	return CartTotals{
		Gross:         gross,
		DiscountTotal: discount,
		Net:           gross.Sub(discount),
	}
}
