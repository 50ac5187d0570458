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
	productsPath    = "inventario/productos/"
	inventoriesPath = "inventario/inventarios/"
	// stockPageSize covers a whole branch inventory in one request
	stockPageSize = 1000
)

// SearchProducts runs the catalog text search. Inactive products are skipped.
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]pos.Product, error) {
	q := url.Values{}
	q.Set("search", query)
	if limit > 0 {
		q.Set("page_size", strconv.Itoa(limit))
	}
	body, err := c.do(ctx, request{method: http.MethodGet, path: productsPath, query: q})
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList[productDTO](body)
	if err != nil {
		c.logger.Warn("failed to decode product list", zap.Error(err))
		return nil, shared.NewRemoteError("Unexpected response from the business service")
	}
	products := make([]pos.Product, 0, len(items))
	for _, item := range items {
		p := item.toDomain()
		if !p.Active {
			continue
		}
		products = append(products, p)
		if limit > 0 && len(products) == limit {
			break
		}
	}
	return products, nil
}

// GetProduct loads a single product
func (c *Client) GetProduct(ctx context.Context, id int64) (*pos.Product, error) {
	var dto productDTO
	if err := c.doJSON(ctx, request{
		method: http.MethodGet,
		path:   productsPath + strconv.FormatInt(id, 10) + "/",
	}, &dto); err != nil {
		return nil, err
	}
	p := dto.toDomain()
	return &p, nil
}

// BranchStock returns the inventory rows of a branch
func (c *Client) BranchStock(ctx context.Context, branchID int64) ([]pos.StockLevel, error) {
	q := url.Values{}
	q.Set("sucursal", strconv.FormatInt(branchID, 10))
	q.Set("page_size", strconv.Itoa(stockPageSize))
	body, err := c.do(ctx, request{method: http.MethodGet, path: inventoriesPath, query: q})
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList[inventoryDTO](body)
	if err != nil {
		c.logger.Warn("failed to decode inventory list", zap.Error(err))
		return nil, shared.NewRemoteError("Unexpected response from the business service")
	}
	levels := make([]pos.StockLevel, 0, len(items))
	for _, item := range items {
		level := item.toDomain()
		if level.BranchID == 0 {
			level.BranchID = branchID
		}
		// some deployments ignore the filter
		if level.BranchID != branchID {
			continue
		}
		levels = append(levels, level)
	}
	return levels, nil
}

type stockBody struct {
	Branch  int64  `json:"sucursal"`
	Product int64  `json:"producto"`
	Current string `json:"stock_actual"`
	Minimum string `json:"stock_minimo"`
}

// UpdateStock replaces the inventory row of a product at a branch, creating
// it when the branch has none yet
func (c *Client) UpdateStock(ctx context.Context, update pos.StockUpdate) (*pos.StockLevel, error) {
	q := url.Values{}
	q.Set("sucursal", strconv.FormatInt(update.BranchID, 10))
	q.Set("producto", strconv.FormatInt(update.ProductID, 10))
	body, err := c.do(ctx, request{method: http.MethodGet, path: inventoriesPath, query: q})
	if err != nil {
		return nil, err
	}
	rows, _, err := decodeList[inventoryDTO](body)
	if err != nil {
		c.logger.Warn("failed to decode inventory list", zap.Error(err))
		return nil, shared.NewRemoteError("Unexpected response from the business service")
	}

	req := request{
		method: http.MethodPost,
		path:   inventoriesPath,
		body: stockBody{
			Branch:  update.BranchID,
			Product: update.ProductID,
			Current: update.Current.String(),
			Minimum: update.Minimum.String(),
		},
	}
	for _, row := range rows {
		if row.Product.ID == update.ProductID && int64(row.ID) != 0 {
			req.method = http.MethodPut
			req.path = inventoriesPath + strconv.FormatInt(int64(row.ID), 10) + "/"
			break
		}
	}

	var dto inventoryDTO
	if err := c.doJSON(ctx, req, &dto); err != nil {
		return nil, err
	}
	level := dto.toDomain()
	if level.ProductID == 0 {
		level.ProductID = update.ProductID
	}
	if level.BranchID == 0 {
		level.BranchID = update.BranchID
	}
	return &level, nil
}
