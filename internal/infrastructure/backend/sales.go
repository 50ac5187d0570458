package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	salesPath    = "ventas/ventas/"
	invoicesPath = "ventas/facturas/generar/"

	// IdempotencyHeader carries the commit key to the backend
	IdempotencyHeader = "Idempotency-Key"
)

// CreateSale submits the commit payload
func (c *Client) CreateSale(ctx context.Context, payload pos.CommitPayload, idempotencyKey string) (*pos.Sale, error) {
	r := request{method: http.MethodPost, path: salesPath, body: payload}
	if idempotencyKey != "" {
		r.headers = map[string]string{IdempotencyHeader: idempotencyKey}
	}
	var dto saleDTO
	if err := c.doJSON(ctx, r, &dto); err != nil {
		return nil, err
	}
	if dto.ID == 0 {
		return nil, shared.NewRemoteError("The business service did not return the created sale")
	}
	sale := dto.toDomain()
	if sale.NetTotal.IsZero() {
		sale.NetTotal = payload.Net()
	}
	return &sale, nil
}

// GenerateInvoice requests the electronic invoice of a sale
func (c *Client) GenerateInvoice(ctx context.Context, req pos.InvoiceRequest) (*pos.Invoice, error) {
	var dto invoiceDTO
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: invoicesPath, body: req}, &dto); err != nil {
		return nil, err
	}
	invoice := dto.toDomain()
	if invoice.SaleID == 0 {
		invoice.SaleID = req.SaleID
	}
	if invoice.TaxID == "" {
		invoice.TaxID = req.TaxID
	}
	if invoice.LegalName == "" {
		invoice.LegalName = req.LegalName
	}
	return invoice, nil
}

// ListSales returns a page of the sales history
func (c *Client) ListSales(ctx context.Context, filter pos.SaleFilter) (shared.Paginated[pos.Sale], error) {
	f := filter.Filter.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("page_size", strconv.Itoa(f.PageSize))
	if filter.From != nil {
		q.Set("fecha_desde", filter.From.Format("2006-01-02"))
	}
	if filter.To != nil {
		q.Set("fecha_hasta", filter.To.Format("2006-01-02"))
	}
	if filter.BranchID > 0 {
		q.Set("sucursal", strconv.FormatInt(filter.BranchID, 10))
	}
	if filter.StatusID > 0 {
		q.Set("estado_venta", strconv.FormatInt(filter.StatusID, 10))
	}

	body, err := c.do(ctx, request{method: http.MethodGet, path: salesPath, query: q})
	if err != nil {
		return shared.Paginated[pos.Sale]{}, err
	}
	items, total, err := decodeList[saleDTO](body)
	if err != nil {
		c.logger.Warn("failed to decode sales list", zap.Error(err))
		return shared.Paginated[pos.Sale]{}, shared.NewRemoteError("Unexpected response from the business service")
	}
	sales := make([]pos.Sale, len(items))
	for i, item := range items {
		sales[i] = item.toDomain()
	}
	return shared.NewPaginated(sales, total, f.Page, f.PageSize), nil
}

// GetSale loads one sale with its lines and payments
func (c *Client) GetSale(ctx context.Context, id int64) (*pos.Sale, error) {
	var dto saleDTO
	if err := c.doJSON(ctx, request{
		method: http.MethodGet,
		path:   salesPath + strconv.FormatInt(id, 10) + "/",
	}, &dto); err != nil {
		return nil, err
	}
	sale := dto.toDomain()
	return &sale, nil
}

type saleStatusBody struct {
	Status int64 `json:"estado_venta"`
}

// UpdateSaleStatus moves a sale to another status
func (c *Client) UpdateSaleStatus(ctx context.Context, id, statusID int64) (*pos.Sale, error) {
	var dto saleDTO
	if err := c.doJSON(ctx, request{
		method: http.MethodPatch,
		path:   salesPath + strconv.FormatInt(id, 10) + "/",
		body:   saleStatusBody{Status: statusID},
	}, &dto); err != nil {
		return nil, err
	}
	sale := dto.toDomain()
	if sale.ID == 0 {
		sale.ID = id
	}
	if sale.Status.ID == 0 {
		sale.Status.ID = statusID
	}
	return &sale, nil
}
