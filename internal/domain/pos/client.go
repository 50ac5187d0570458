package pos

import (
	"strings"

	"github.com/erp/pos/internal/domain/shared"
)

// Client is a customer looked up or created on demand
type Client struct {
	ID        int64  `json:"id"`
	TaxID     string `json:"tax_id"`
	Name      string `json:"name"`
	LegalName string `json:"legal_name"`
	Email     string `json:"email,omitempty"`
}

// ClientFilter pages through the client directory
type ClientFilter struct {
	Search   string
	Page     int
	PageSize int
}

// NormalizeClient trims the editable fields and requires a tax id and a name.
// An empty legal name defaults to the name.
func NormalizeClient(c Client) (Client, error) {
	c.TaxID = strings.TrimSpace(c.TaxID)
	c.Name = strings.TrimSpace(c.Name)
	c.LegalName = strings.TrimSpace(c.LegalName)
	c.Email = strings.TrimSpace(c.Email)
	if c.TaxID == "" || c.Name == "" {
		return Client{}, shared.NewValidationError("Tax id and name are required")
	}
	if c.LegalName == "" {
		c.LegalName = c.Name
	}
	return c, nil
}

// Default invoice identity when the sale has no client
const (
	DefaultInvoiceTaxID     = "0"
	DefaultInvoiceLegalName = "Cliente General"
)

// InvoiceName returns the legal name, falling back to the name
func (c *Client) InvoiceName() string {
	if c == nil {
		return DefaultInvoiceLegalName
	}
	if strings.TrimSpace(c.LegalName) != "" {
		return c.LegalName
	}
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return DefaultInvoiceLegalName
}

// InvoiceTaxID returns the tax id, falling back to the generic one
func (c *Client) InvoiceTaxID() string {
	if c == nil || strings.TrimSpace(c.TaxID) == "" {
		return DefaultInvoiceTaxID
	}
	return c.TaxID
}

// FindByTaxID returns the client whose tax id matches exactly
func FindByTaxID(clients []Client, taxID string) (Client, bool) {
	taxID = strings.TrimSpace(taxID)
	for _, c := range clients {
		if strings.TrimSpace(c.TaxID) == taxID {
			return c, true
		}
	}
	return Client{}, false
}
