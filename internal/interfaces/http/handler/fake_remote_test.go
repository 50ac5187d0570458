package handler_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

// fakeRemote is an in-memory stand-in for the remote business API
type fakeRemote struct {
	mu sync.Mutex

	products map[int64]pos.Product
	stock    map[int64]decimal.Decimal // product id -> stock at branch 1
	minimum  map[int64]decimal.Decimal // product id -> minimum at branch 1
	clients  []pos.Client
	sessions map[int64]*pos.DrawerSession // point of sale id -> open session
	openedBy map[int64]string             // session id -> cashier
	sales    map[int64]*pos.Sale
	payloads []pos.CommitPayload
	keys     []string

	nextID    int64
	failSales error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		products: map[int64]pos.Product{
			1: {ID: 1, Code: "P-001", Barcode: "7790001", Name: "Coffee", Unit: "unit", Price: decimal.RequireFromString("15.50"), Active: true},
			2: {ID: 2, Code: "P-002", Barcode: "7790002", Name: "Tea", Unit: "unit", Price: decimal.RequireFromString("8.00"), Active: true},
			3: {ID: 3, Code: "P-003", Barcode: "7790003", Name: "Sugar", Unit: "kg", Price: decimal.RequireFromString("12.00"), Active: true},
		},
		stock: map[int64]decimal.Decimal{
			1: decimal.NewFromInt(10),
			2: decimal.NewFromInt(2),
			3: decimal.Zero,
		},
		minimum: map[int64]decimal.Decimal{
			1: decimal.NewFromInt(2),
			2: decimal.NewFromInt(5),
		},
		clients: []pos.Client{
			{ID: 7, TaxID: "1234567", Name: "Ana Perez", LegalName: "Ana Perez"},
			{ID: 8, TaxID: "12345678", Name: "Comercial Sur", LegalName: "Comercial Sur SRL"},
		},
		sessions: map[int64]*pos.DrawerSession{},
		openedBy: map[int64]string{},
		sales:    map[int64]*pos.Sale{},
		nextID:   100,
	}
}

func (f *fakeRemote) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRemote) SearchProducts(_ context.Context, query string, limit int) ([]pos.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []pos.Product
	for id := int64(1); id <= int64(len(f.products)); id++ {
		p := f.products[id]
		q := strings.ToLower(query)
		if strings.Contains(strings.ToLower(p.Name), q) || p.Code == query || p.Barcode == query {
			result = append(result, p)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (f *fakeRemote) GetProduct(_ context.Context, id int64) (*pos.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Not found.")
	}
	return &p, nil
}

func (f *fakeRemote) BranchStock(_ context.Context, branchID int64) ([]pos.StockLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if branchID != 1 {
		return nil, nil
	}
	levels := make([]pos.StockLevel, 0, len(f.stock))
	for id, qty := range f.stock {
		levels = append(levels, pos.StockLevel{ID: id, ProductID: id, BranchID: branchID, Current: qty, Minimum: f.minimum[id]})
	}
	return levels, nil
}

func (f *fakeRemote) UpdateStock(_ context.Context, update pos.StockUpdate) (*pos.StockLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if update.BranchID != 1 {
		return nil, shared.NewRemoteError("sucursal: invalid pk")
	}
	f.stock[update.ProductID] = update.Current
	f.minimum[update.ProductID] = update.Minimum
	return &pos.StockLevel{
		ID:        update.ProductID,
		ProductID: update.ProductID,
		BranchID:  update.BranchID,
		Current:   update.Current,
		Minimum:   update.Minimum,
	}, nil
}

func (f *fakeRemote) Open(ctx context.Context, pointOfSaleID int64, openingAmount decimal.Decimal) (*pos.DrawerSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[pointOfSaleID]; ok {
		return nil, shared.NewRemoteError("Ya existe una caja abierta en este punto de venta")
	}
	s := &pos.DrawerSession{
		ID:            f.id(),
		Branch:        pos.NamedRef{ID: 1, Name: "Central"},
		PointOfSale:   pos.NamedRef{ID: pointOfSaleID, Name: "Caja 1"},
		OpenedBy:      pos.NamedRef{ID: 42, Name: "cashier"},
		OpenedAt:      time.Now(),
		OpeningAmount: openingAmount,
		Status:        pos.DrawerOpen,
	}
	f.sessions[pointOfSaleID] = s
	f.openedBy[s.ID] = logger.GetCashierID(ctx)
	c := *s
	return &c, nil
}

func (f *fakeRemote) OwnOpen(ctx context.Context) (*pos.DrawerSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cashier := logger.GetCashierID(ctx)
	for _, s := range f.sessions {
		if f.openedBy[s.ID] == cashier {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeRemote) ForPointOfSale(_ context.Context, pointOfSaleID int64) (*pos.DrawerSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[pointOfSaleID]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (f *fakeRemote) Close(_ context.Context, sessionID int64, actual decimal.Decimal) (*pos.DrawerSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for posID, s := range f.sessions {
		if s.ID != sessionID {
			continue
		}
		delete(f.sessions, posID)
		closed := *s
		closed.Status = pos.DrawerClosed
		closed.SystemClosingAmount = s.OpeningAmount
		closed.ActualClosingAmount = actual
		closed.Discrepancy = actual.Sub(s.OpeningAmount)
		return &closed, nil
	}
	return nil, shared.NewDomainError(shared.CodeNotFound, "Not found.")
}

func (f *fakeRemote) CreateSale(_ context.Context, payload pos.CommitPayload, key string) (*pos.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSales != nil {
		return nil, f.failSales
	}
	f.payloads = append(f.payloads, payload)
	f.keys = append(f.keys, key)
	sale := &pos.Sale{
		ID:          f.id(),
		Branch:      pos.NamedRef{ID: payload.BranchID},
		PointOfSale: pos.NamedRef{ID: payload.PointOfSaleID},
		Status:      pos.NamedRef{ID: 1, Name: "Completada"},
		CreatedAt:   time.Now(),
		NetTotal:    payload.Net(),
	}
	f.sales[sale.ID] = sale
	c := *sale
	return &c, nil
}

func (f *fakeRemote) GenerateInvoice(_ context.Context, req pos.InvoiceRequest) (*pos.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sales[req.SaleID]; !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Not found.")
	}
	return &pos.Invoice{
		ID:        f.id(),
		SaleID:    req.SaleID,
		TaxID:     req.TaxID,
		LegalName: req.LegalName,
		Number:    "F-0001",
		IssuedAt:  time.Now(),
	}, nil
}

func (f *fakeRemote) ListSales(_ context.Context, filter pos.SaleFilter) (shared.Paginated[pos.Sale], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]pos.Sale, 0, len(f.sales))
	for _, s := range f.sales {
		items = append(items, *s)
	}
	return shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize), nil
}

func (f *fakeRemote) GetSale(_ context.Context, id int64) (*pos.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sales[id]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Not found.")
	}
	c := *s
	return &c, nil
}

func (f *fakeRemote) UpdateSaleStatus(_ context.Context, id, statusID int64) (*pos.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sales[id]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Not found.")
	}
	s.Status = pos.NamedRef{ID: statusID, Name: "Anulada"}
	c := *s
	return &c, nil
}

func (f *fakeRemote) SearchClients(_ context.Context, search string) ([]pos.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []pos.Client
	for _, c := range f.clients {
		if strings.Contains(c.TaxID, search) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeRemote) CreateClient(_ context.Context, client pos.Client) (*pos.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	client.ID = f.id()
	f.clients = append(f.clients, client)
	return &client, nil
}

func (f *fakeRemote) ListClients(_ context.Context, filter pos.ClientFilter) ([]pos.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []pos.Client
	for _, c := range f.clients {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Search)) || strings.Contains(c.TaxID, filter.Search) {
			matched = append(matched, c)
		}
	}
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(matched) {
		return nil, nil
	}
	end := min(start+filter.PageSize, len(matched))
	return matched[start:end], nil
}

func (f *fakeRemote) UpdateClient(_ context.Context, id int64, client pos.Client) (*pos.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.clients {
		if f.clients[i].ID == id {
			client.ID = id
			f.clients[i] = client
			return &client, nil
		}
	}
	return nil, shared.NewDomainError(shared.CodeNotFound, "No encontrado.")
}

func (f *fakeRemote) PaymentMethods(context.Context) ([]pos.NamedRef, error) {
	return []pos.NamedRef{{ID: 1, Name: "Efectivo"}, {ID: 2, Name: "QR"}}, nil
}

func (f *fakeRemote) Branches(context.Context) ([]pos.NamedRef, error) {
	return []pos.NamedRef{{ID: 1, Name: "Central"}, {ID: 2, Name: "Norte"}}, nil
}

func (f *fakeRemote) PointsOfSale(_ context.Context, branchID int64) ([]pos.NamedRef, error) {
	if branchID == 1 {
		return []pos.NamedRef{{ID: 1, Name: "Caja 1"}, {ID: 2, Name: "Caja 2"}}, nil
	}
	return []pos.NamedRef{{ID: 5, Name: "Caja Norte"}}, nil
}

func (f *fakeRemote) SaleStatuses(context.Context) ([]pos.NamedRef, error) {
	return []pos.NamedRef{{ID: 1, Name: "Completada"}, {ID: 2, Name: "Anulada"}}, nil
}
