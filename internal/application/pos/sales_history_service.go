package pos

import (
	"context"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SalesHistoryService lists, reads and cancels committed sales
type SalesHistoryService struct {
	sales      pos.SalesGateway
	masterData *MasterDataService
	journal    pos.SaleJournal
	logger     *zap.Logger
}

// NewSalesHistoryService creates a new SalesHistoryService
func NewSalesHistoryService(sales pos.SalesGateway, masterData *MasterDataService, journal pos.SaleJournal, logger *zap.Logger) *SalesHistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHistoryService{sales: sales, masterData: masterData, journal: journal, logger: logger}
}

// List returns a page of sales
func (s *SalesHistoryService) List(ctx context.Context, filter pos.SaleFilter) (shared.Paginated[pos.Sale], error) {
	filter.Filter = filter.Filter.Normalize()
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return shared.Paginated[pos.Sale]{}, shared.NewValidationError("The start date must be before the end date")
	}
	return s.sales.ListSales(ctx, filter)
}

// Get returns one sale
func (s *SalesHistoryService) Get(ctx context.Context, id int64) (*pos.Sale, error) {
	if id <= 0 {
		return nil, shared.NewValidationError("Invalid sale id")
	}
	return s.sales.GetSale(ctx, id)
}

// Cancel moves a sale to the cancelled status
func (s *SalesHistoryService) Cancel(ctx context.Context, id int64) (*pos.Sale, error) {
	if id <= 0 {
		return nil, shared.NewValidationError("Invalid sale id")
	}
	status, err := s.masterData.CancelledStatus(ctx)
	if err != nil {
		return nil, err
	}
	sale, err := s.sales.UpdateSaleStatus(ctx, id, status.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("sale cancelled", zap.Int64("sale_id", id), zap.Int64("status_id", status.ID))
	return sale, nil
}

// Attempt returns one commit attempt of cashierID. Attempts of other
// cashiers are reported as not found.
func (s *SalesHistoryService) Attempt(ctx context.Context, cashierID string, id uuid.UUID) (*pos.JournalEntry, error) {
	if s.journal == nil {
		return nil, shared.ErrNotFound
	}
	entry, err := s.journal.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.CashierID != cashierID {
		return nil, shared.ErrNotFound
	}
	return entry, nil
}

// Attempts returns the recent commit attempts of a cashier
func (s *SalesHistoryService) Attempts(ctx context.Context, cashierID string, limit int) ([]pos.JournalEntry, error) {
	if s.journal == nil {
		return []pos.JournalEntry{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.journal.ListByCashier(ctx, cashierID, limit)
}
