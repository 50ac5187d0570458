package pos

import (
	"context"
	"sync"
	"time"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockCatalogGateway struct {
	mock.Mock
}

func (m *MockCatalogGateway) SearchProducts(ctx context.Context, query string, limit int) ([]pos.Product, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pos.Product), args.Error(1)
}

func (m *MockCatalogGateway) GetProduct(ctx context.Context, id int64) (*pos.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Product), args.Error(1)
}

func (m *MockCatalogGateway) BranchStock(ctx context.Context, branchID int64) ([]pos.StockLevel, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pos.StockLevel), args.Error(1)
}

func (m *MockCatalogGateway) UpdateStock(ctx context.Context, update pos.StockUpdate) (*pos.StockLevel, error) {
	args := m.Called(ctx, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.StockLevel), args.Error(1)
}

type MockDrawerGateway struct {
	mock.Mock
}

func (m *MockDrawerGateway) Open(ctx context.Context, pointOfSaleID int64, openingAmount decimal.Decimal) (*pos.DrawerSession, error) {
	args := m.Called(ctx, pointOfSaleID, openingAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.DrawerSession), args.Error(1)
}

func (m *MockDrawerGateway) OwnOpen(ctx context.Context) (*pos.DrawerSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.DrawerSession), args.Error(1)
}

func (m *MockDrawerGateway) ForPointOfSale(ctx context.Context, pointOfSaleID int64) (*pos.DrawerSession, error) {
	args := m.Called(ctx, pointOfSaleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.DrawerSession), args.Error(1)
}

func (m *MockDrawerGateway) Close(ctx context.Context, sessionID int64, actualClosingAmount decimal.Decimal) (*pos.DrawerSession, error) {
	args := m.Called(ctx, sessionID, actualClosingAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.DrawerSession), args.Error(1)
}

type MockSalesGateway struct {
	mock.Mock
}

func (m *MockSalesGateway) CreateSale(ctx context.Context, payload pos.CommitPayload, idempotencyKey string) (*pos.Sale, error) {
	args := m.Called(ctx, payload, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Sale), args.Error(1)
}

func (m *MockSalesGateway) GenerateInvoice(ctx context.Context, req pos.InvoiceRequest) (*pos.Invoice, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Invoice), args.Error(1)
}

func (m *MockSalesGateway) ListSales(ctx context.Context, filter pos.SaleFilter) (shared.Paginated[pos.Sale], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[pos.Sale]), args.Error(1)
}

func (m *MockSalesGateway) GetSale(ctx context.Context, id int64) (*pos.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Sale), args.Error(1)
}

func (m *MockSalesGateway) UpdateSaleStatus(ctx context.Context, id, statusID int64) (*pos.Sale, error) {
	args := m.Called(ctx, id, statusID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Sale), args.Error(1)
}

type MockClientGateway struct {
	mock.Mock
}

func (m *MockClientGateway) SearchClients(ctx context.Context, search string) ([]pos.Client, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pos.Client), args.Error(1)
}

func (m *MockClientGateway) CreateClient(ctx context.Context, client pos.Client) (*pos.Client, error) {
	args := m.Called(ctx, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Client), args.Error(1)
}

func (m *MockClientGateway) ListClients(ctx context.Context, filter pos.ClientFilter) ([]pos.Client, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pos.Client), args.Error(1)
}

func (m *MockClientGateway) UpdateClient(ctx context.Context, id int64, client pos.Client) (*pos.Client, error) {
	args := m.Called(ctx, id, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Client), args.Error(1)
}

type MockMasterDataGateway struct {
	mock.Mock
}

func (m *MockMasterDataGateway) refs(args mock.Arguments) ([]pos.NamedRef, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pos.NamedRef), args.Error(1)
}

func (m *MockMasterDataGateway) PaymentMethods(ctx context.Context) ([]pos.NamedRef, error) {
	return m.refs(m.Called(ctx))
}

func (m *MockMasterDataGateway) Branches(ctx context.Context) ([]pos.NamedRef, error) {
	return m.refs(m.Called(ctx))
}

func (m *MockMasterDataGateway) PointsOfSale(ctx context.Context, branchID int64) ([]pos.NamedRef, error) {
	return m.refs(m.Called(ctx, branchID))
}

func (m *MockMasterDataGateway) SaleStatuses(ctx context.Context) ([]pos.NamedRef, error) {
	return m.refs(m.Called(ctx))
}

// memoryKeys is a minimal IdempotencyStore for orchestrator tests
type memoryKeys struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemoryKeys() *memoryKeys {
	return &memoryKeys{keys: map[string]bool{}}
}

func (s *memoryKeys) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryKeys) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memoryKeys) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memoryKeys) Close() error { return nil }

// memoryJournal keeps entries by id
type memoryJournal struct {
	mu      sync.Mutex
	entries map[uuid.UUID]pos.JournalEntry
	saves   int
}

func newMemoryJournal() *memoryJournal {
	return &memoryJournal{entries: map[uuid.UUID]pos.JournalEntry{}}
}

func (j *memoryJournal) Save(_ context.Context, entry *pos.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries[entry.ID] = *entry
	j.saves++
	return nil
}

func (j *memoryJournal) FindByKey(_ context.Context, key string) (*pos.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range j.entries {
		if e.IdempotencyKey == key {
			found := e
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (j *memoryJournal) FindByID(_ context.Context, id uuid.UUID) (*pos.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	e, ok := j.entries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &e, nil
}

func (j *memoryJournal) ListByCashier(_ context.Context, cashierID string, limit int) ([]pos.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var result []pos.JournalEntry
	for _, e := range j.entries {
		if e.CashierID == cashierID && len(result) < limit {
			result = append(result, e)
		}
	}
	return result, nil
}

// recordingMetrics counts business events
type recordingMetrics struct {
	mu        sync.Mutex
	committed int
	failed    []string
	opened    int
	closed    int
}

func (r *recordingMetrics) SaleCommitted(context.Context, int64, decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed++
}

func (r *recordingMetrics) SaleFailed(_ context.Context, _ int64, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, code)
}

func (r *recordingMetrics) DrawerOpened(context.Context, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened++
}

func (r *recordingMetrics) DrawerClosed(context.Context, int64, decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func openDrawerAt(id, branchID, posID int64) *pos.DrawerSession {
	return &pos.DrawerSession{
		ID:            id,
		Branch:        pos.NamedRef{ID: branchID, Name: "Central"},
		PointOfSale:   pos.NamedRef{ID: posID, Name: "Caja 1"},
		OpeningAmount: dec("100"),
		Status:        pos.DrawerOpen,
	}
}
