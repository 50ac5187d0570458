package pos

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultSearchLimit is the page size of a text search
	DefaultSearchLimit = 10
	// barcodeSearchLimit bounds the candidates of a scanned code
	barcodeSearchLimit = 5
)

// CatalogService queries products and live branch stock
type CatalogService struct {
	gateway pos.CatalogGateway
	logger  *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(gateway pos.CatalogGateway, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{gateway: gateway, logger: logger}
}

// SearchByText returns products matching query annotated with branch stock.
// An empty query returns nothing without calling the backend.
func (s *CatalogService) SearchByText(ctx context.Context, branchID int64, query string, limit int) ([]pos.ProductWithStock, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []pos.ProductWithStock{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	products, err := s.gateway.SearchProducts(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []pos.ProductWithStock{}, nil
	}
	if branchID == 0 {
		return pos.MergeStock(products, nil), nil
	}

	levels, err := s.gateway.BranchStock(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return pos.MergeStock(products, levels), nil
}

// SearchByBarcode returns the best match for a scanned code: an exact
// barcode or code match, else the first search result.
func (s *CatalogService) SearchByBarcode(ctx context.Context, branchID int64, code string) (*pos.ProductWithStock, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("Barcode is required")
	}

	results, err := s.SearchByText(ctx, branchID, code, barcodeSearchLimit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, shared.NewDomainError(shared.CodeNotFound, "No product matches code "+code)
	}
	for i := range results {
		if results[i].Barcode == code || results[i].Code == code {
			return &results[i], nil
		}
	}
	s.logger.Debug("no exact barcode match, using first result",
		zap.String("code", code),
		zap.Int64("product_id", results[0].ID),
	)
	return &results[0], nil
}

// GetProduct reads a single product
func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*pos.Product, error) {
	if productID == 0 {
		return nil, shared.NewValidationError("Product is required")
	}
	return s.gateway.GetProduct(ctx, productID)
}

// LiveStock reads the current stock of a product at a branch
func (s *CatalogService) LiveStock(ctx context.Context, branchID, productID int64) (decimal.Decimal, error) {
	levels, err := s.gateway.BranchStock(ctx, branchID)
	if err != nil {
		return decimal.Zero, err
	}
	return pos.StockFor(levels, productID), nil
}

// LowStock lists the products of a branch whose stock is at or below the
// minimum, in inventory order. Products the catalog no longer knows are skipped.
func (s *CatalogService) LowStock(ctx context.Context, branchID int64) ([]pos.ProductWithStock, error) {
	if branchID == 0 {
		return nil, shared.NewValidationError("Select a branch")
	}
	levels, err := s.gateway.BranchStock(ctx, branchID)
	if err != nil {
		return nil, err
	}

	result := []pos.ProductWithStock{}
	for _, level := range levels {
		item := pos.ProductWithStock{Stock: level.Current, MinimumStock: level.Minimum}
		if !item.IsLow() {
			continue
		}
		product, err := s.gateway.GetProduct(ctx, level.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Debug("inventory row without product", zap.Int64("product_id", level.ProductID))
				continue
			}
			return nil, err
		}
		item.Product = *product
		result = append(result, item)
	}
	return result, nil
}

// AdjustStock sets the stock and minimum of a product at a branch
func (s *CatalogService) AdjustStock(ctx context.Context, update pos.StockUpdate) (*pos.StockLevel, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	level, err := s.gateway.UpdateStock(ctx, update)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock adjusted",
		zap.Int64("branch_id", update.BranchID),
		zap.Int64("product_id", update.ProductID),
		zap.String("current", update.Current.String()),
	)
	return level, nil
}
