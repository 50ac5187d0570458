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
	paymentMethodsPath = "ventas/metodos-pago/"
	branchesPath       = "negocio/sucursales/"
	pointsOfSalePath   = "negocio/puntos-venta/"
	saleStatusesPath   = "negocio/estados-venta/"
)

// PaymentMethods lists the active payment methods
func (c *Client) PaymentMethods(ctx context.Context) ([]pos.NamedRef, error) {
	return c.namedList(ctx, paymentMethodsPath, nil)
}

// Branches lists the active branches
func (c *Client) Branches(ctx context.Context) ([]pos.NamedRef, error) {
	return c.namedList(ctx, branchesPath, nil)
}

// PointsOfSale lists the points of sale of a branch
func (c *Client) PointsOfSale(ctx context.Context, branchID int64) ([]pos.NamedRef, error) {
	q := url.Values{}
	q.Set("sucursal", strconv.FormatInt(branchID, 10))
	return c.namedList(ctx, pointsOfSalePath, q)
}

// SaleStatuses lists the sale statuses
func (c *Client) SaleStatuses(ctx context.Context) ([]pos.NamedRef, error) {
	return c.namedList(ctx, saleStatusesPath, nil)
}

func (c *Client) namedList(ctx context.Context, path string, query url.Values) ([]pos.NamedRef, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("page_size", strconv.Itoa(c.pageSize))
	body, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList[namedDTO](body)
	if err != nil {
		c.logger.Warn("failed to decode reference list", zap.String("path", path), zap.Error(err))
		return nil, shared.NewRemoteError("Unexpected response from the business service")
	}
	refs := make([]pos.NamedRef, 0, len(items))
	for _, item := range items {
		if !item.active() {
			continue
		}
		refs = append(refs, item.toDomain())
	}
	return refs, nil
}
