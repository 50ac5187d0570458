package pos

import (
	"context"
	"testing"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	branchCentral = pos.NamedRef{ID: 1, Name: "Central"}
	branchNorte   = pos.NamedRef{ID: 2, Name: "Norte"}
	caja1         = pos.NamedRef{ID: 7, Name: "Caja 1"}
	caja2         = pos.NamedRef{ID: 8, Name: "Caja 2"}
	cajaNorte     = pos.NamedRef{ID: 9, Name: "Caja Norte"}
	efectivo      = pos.NamedRef{ID: 1, Name: "Efectivo"}
	qr            = pos.NamedRef{ID: 2, Name: "QR"}
)

type fixture struct {
	catalog  *MockCatalogGateway
	drawers  *MockDrawerGateway
	sales    *MockSalesGateway
	clients  *MockClientGateway
	master   *MockMasterDataGateway
	metrics  *recordingMetrics
	deps     TerminalDeps
	terminal *Terminal
}

func newFixture() *fixture {
	f := &fixture{
		catalog: new(MockCatalogGateway),
		drawers: new(MockDrawerGateway),
		sales:   new(MockSalesGateway),
		clients: new(MockClientGateway),
		master:  new(MockMasterDataGateway),
		metrics: &recordingMetrics{},
	}
	f.master.On("PaymentMethods", mock.Anything).Return([]pos.NamedRef{efectivo, qr}, nil).Maybe()
	f.master.On("Branches", mock.Anything).Return([]pos.NamedRef{branchCentral, branchNorte}, nil).Maybe()
	f.master.On("PointsOfSale", mock.Anything, int64(1)).Return([]pos.NamedRef{caja1, caja2}, nil).Maybe()
	f.master.On("PointsOfSale", mock.Anything, int64(2)).Return([]pos.NamedRef{cajaNorte}, nil).Maybe()
	f.master.On("SaleStatuses", mock.Anything).Return([]pos.NamedRef{{ID: 1, Name: "Completada"}, {ID: 3, Name: "Anulada"}}, nil).Maybe()

	f.deps = TerminalDeps{
		Catalog:    NewCatalogService(f.catalog, nil),
		Drawers:    f.drawers,
		Clients:    f.clients,
		MasterData: NewMasterDataService(f.master, nil, 0, nil),
		Metrics:    f.metrics,
	}
	f.terminal = NewTerminal("42", f.deps)
	return f
}

// openAt places the terminal at branch Central, Caja 1 with an open drawer
func (f *fixture) openAt() {
	f.terminal.branch = branchCentral
	f.terminal.pointOfSale = caja1
	_ = f.terminal.drawer.drawer.Opened(openDrawerAt(11, 1, 7))
}

func (f *fixture) stock(levels ...pos.StockLevel) {
	f.catalog.On("BranchStock", mock.Anything, int64(1)).Return(levels, nil)
}

func (f *fixture) product(id int64, price string) *pos.Product {
	p := &pos.Product{ID: id, Name: "Producto", Barcode: "77900" + string(rune('0'+id)), Price: dec(price), Active: true}
	f.catalog.On("GetProduct", mock.Anything, id).Return(p, nil)
	return p
}

func TestTerminal_Init(t *testing.T) {
	ctx := context.Background()

	t.Run("resumes a drawer open under the cashier", func(t *testing.T) {
		f := newFixture()
		own := openDrawerAt(5, 2, 9)
		own.Branch.Name = ""
		own.PointOfSale.Name = ""
		f.drawers.On("OwnOpen", mock.Anything).Return(own, nil)

		snap, err := f.terminal.Init(ctx, TerminalDefaults{BranchID: 1, PointOfSaleID: 7})
		require.NoError(t, err)
		assert.Equal(t, branchNorte, snap.Branch)
		assert.Equal(t, cajaNorte, snap.PointOfSale)
		assert.True(t, snap.Drawer.IsOpen)
	})

	t.Run("falls back to defaults", func(t *testing.T) {
		f := newFixture()
		f.drawers.On("OwnOpen", mock.Anything).Return(nil, nil)
		f.drawers.On("ForPointOfSale", mock.Anything, int64(8)).Return(nil, nil)

		snap, err := f.terminal.Init(ctx, TerminalDefaults{BranchID: 1, PointOfSaleID: 8})
		require.NoError(t, err)
		assert.Equal(t, branchCentral, snap.Branch)
		assert.Equal(t, caja2, snap.PointOfSale)
		assert.Equal(t, pos.StateNoSession, snap.Drawer.State)
	})

	t.Run("first branch and point of sale without defaults", func(t *testing.T) {
		f := newFixture()
		f.drawers.On("OwnOpen", mock.Anything).Return(nil, nil)
		f.drawers.On("ForPointOfSale", mock.Anything, int64(7)).Return(openDrawerAt(3, 1, 7), nil)

		snap, err := f.terminal.Init(ctx, TerminalDefaults{})
		require.NoError(t, err)
		assert.Equal(t, caja1, snap.PointOfSale)
		assert.True(t, snap.Drawer.IsOpen)
	})
}

func TestTerminal_SelectBranch(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.openAt()
	f.drawers.On("ForPointOfSale", mock.Anything, int64(9)).Return(nil, nil)
	f.drawers.On("OwnOpen", mock.Anything).Return(openDrawerAt(11, 1, 7), nil)
	f.stock(pos.StockLevel{ProductID: 1, Current: dec("5")})
	f.product(1, "10")
	_, err := f.terminal.AddItem(ctx, 1)
	require.NoError(t, err)

	snap, err := f.terminal.SelectBranch(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, branchNorte, snap.Branch)
	assert.Equal(t, cajaNorte, snap.PointOfSale, "first point of sale is selected")
	assert.Equal(t, pos.StateOpenElsewhere, snap.Drawer.State)
	assert.Empty(t, snap.Lines, "switching branch discards the draft")

	_, err = f.terminal.SelectBranch(ctx, 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTerminal_SelectPointOfSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.terminal.branch = branchCentral
	f.drawers.On("ForPointOfSale", mock.Anything, int64(8)).Return(openDrawerAt(4, 1, 8), nil)

	snap, err := f.terminal.SelectPointOfSale(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, caja2, snap.PointOfSale)
	assert.True(t, snap.Drawer.IsOpen)

	_, err = f.terminal.SelectPointOfSale(ctx, 9)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTerminal_CartRequiresOpenDrawer(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.terminal.branch = branchCentral
	f.terminal.pointOfSale = caja1

	_, err := f.terminal.AddItem(ctx, 1)
	assert.ErrorIs(t, err, shared.ErrDrawerClosed)
	_, err = f.terminal.AddByBarcode(ctx, "779001")
	assert.ErrorIs(t, err, shared.ErrDrawerClosed)
	_, err = f.terminal.SetQuantity(1, 2)
	assert.ErrorIs(t, err, shared.ErrDrawerClosed)
	_, err = f.terminal.AddPayment(ctx, AddPaymentInput{MethodID: 1, Amount: dec("5")})
	assert.ErrorIs(t, err, shared.ErrDrawerClosed)

	f.catalog.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
	f.catalog.AssertNotCalled(t, "BranchStock", mock.Anything, mock.Anything)
}

func TestTerminal_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("re-reads live stock on every add", func(t *testing.T) {
		f := newFixture()
		f.openAt()
		f.product(1, "10")
		f.stock(pos.StockLevel{ProductID: 1, Current: dec("2")})

		line, err := f.terminal.AddItem(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), line.Quantity)
		line, err = f.terminal.AddItem(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), line.Quantity)

		_, err = f.terminal.AddItem(ctx, 1)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		f.catalog.AssertNumberOfCalls(t, "BranchStock", 3)
	})

	t.Run("no inventory row is out of stock", func(t *testing.T) {
		f := newFixture()
		f.openAt()
		f.product(1, "10")
		f.stock()

		_, err := f.terminal.AddItem(ctx, 1)
		assert.ErrorIs(t, err, shared.ErrOutOfStock)
		assert.Empty(t, f.terminal.Snapshot().Lines)
	})

	t.Run("remote failure leaves the cart intact", func(t *testing.T) {
		f := newFixture()
		f.openAt()
		f.catalog.On("GetProduct", mock.Anything, int64(3)).Return(nil, shared.NewRemoteError("down"))

		_, err := f.terminal.AddItem(ctx, 3)
		assert.True(t, shared.IsRemote(err))
	})
}

func TestTerminal_AddByBarcode(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.openAt()
	f.catalog.On("SearchProducts", mock.Anything, "779002", barcodeSearchLimit).Return([]pos.Product{
		{ID: 5, Barcode: "7790021", Price: dec("3")},
		{ID: 2, Barcode: "779002", Price: dec("4.50")},
	}, nil)
	f.stock(pos.StockLevel{ProductID: 2, Current: dec("9")})

	line, err := f.terminal.AddByBarcode(ctx, "779002")
	require.NoError(t, err)
	assert.Equal(t, int64(2), line.Product.ID)
	assert.True(t, line.Stock.Equal(dec("9")))
}

func TestTerminal_LineEdits(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.openAt()
	f.product(1, "10")
	f.stock(pos.StockLevel{ProductID: 1, Current: dec("3")})
	_, err := f.terminal.AddItem(ctx, 1)
	require.NoError(t, err)

	snap, err := f.terminal.SetQuantity(1, 5)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, int64(1), snap.Lines[0].Quantity)

	snap, err = f.terminal.SetQuantity(1, 3)
	require.NoError(t, err)
	assert.True(t, snap.Totals.Gross.Equal(dec("30")))

	snap, err = f.terminal.SetDiscount(1, dec("5"))
	require.NoError(t, err)
	assert.True(t, snap.Totals.Net.Equal(dec("25")))

	snap, err = f.terminal.RemoveItem(1)
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)
}

func TestTerminal_Payments(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.openAt()

	p, err := f.terminal.AddPayment(ctx, AddPaymentInput{MethodID: 2, Amount: dec("12"), Reference: " TX-1 "})
	require.NoError(t, err)
	assert.Equal(t, "QR", p.Method.Name)
	assert.Equal(t, "TX-1", p.Reference)

	_, err = f.terminal.AddPayment(ctx, AddPaymentInput{MethodID: 99, Amount: dec("1")})
	assert.True(t, shared.IsValidation(err))
	_, err = f.terminal.AddPayment(ctx, AddPaymentInput{MethodID: 1, Amount: dec("0")})
	assert.True(t, shared.IsValidation(err))

	snap, err := f.terminal.RemovePayment(0)
	require.NoError(t, err)
	assert.Empty(t, snap.Payments)
	assert.False(t, snap.CanSettle)
}

func TestTerminal_Clients(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup requires exact tax id", func(t *testing.T) {
		f := newFixture()
		f.clients.On("SearchClients", mock.Anything, "123").Return([]pos.Client{
			{ID: 1, TaxID: "12345", Name: "Otro"},
			{ID: 2, TaxID: "123", Name: "Ana"},
		}, nil)

		c, err := f.terminal.LookupClient(ctx, " 123 ")
		require.NoError(t, err)
		assert.Equal(t, int64(2), c.ID)
		assert.Equal(t, int64(2), f.terminal.Snapshot().Client.ID)
	})

	t.Run("lookup miss", func(t *testing.T) {
		f := newFixture()
		f.clients.On("SearchClients", mock.Anything, "55").Return([]pos.Client{{ID: 1, TaxID: "551"}}, nil)

		_, err := f.terminal.LookupClient(ctx, "55")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = f.terminal.LookupClient(ctx, "")
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("create selects the new client", func(t *testing.T) {
		f := newFixture()
		f.clients.On("CreateClient", mock.Anything, pos.Client{TaxID: "900", Name: "Luis", LegalName: "Luis", Email: "l@x.bo"}).
			Return(&pos.Client{ID: 30, TaxID: "900", Name: "Luis", LegalName: "Luis"}, nil)

		c, err := f.terminal.CreateClient(ctx, CreateClientInput{TaxID: "900", Name: "Luis", Email: "l@x.bo"})
		require.NoError(t, err)
		assert.Equal(t, int64(30), c.ID)

		snap := f.terminal.ClearClient()
		assert.Nil(t, snap.Client)

		_, err = f.terminal.CreateClient(ctx, CreateClientInput{Name: "NoTax"})
		assert.True(t, shared.IsValidation(err))
	})
}

func TestTerminal_CloseDrawerResetsDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.openAt()
	f.product(1, "10")
	f.stock(pos.StockLevel{ProductID: 1, Current: dec("3")})
	_, err := f.terminal.AddItem(ctx, 1)
	require.NoError(t, err)
	_, err = f.terminal.AddPayment(ctx, AddPaymentInput{MethodID: 1, Amount: dec("10")})
	require.NoError(t, err)
	f.terminal.client = &pos.Client{ID: 3}

	closed := openDrawerAt(11, 1, 7)
	closed.Status = pos.DrawerClosed
	f.drawers.On("Close", mock.Anything, int64(11), amountIs("110")).Return(closed, nil)

	_, err = f.terminal.CloseDrawer(ctx, 0, dec("110"))
	require.NoError(t, err)

	snap := f.terminal.Snapshot()
	assert.Empty(t, snap.Lines)
	assert.Empty(t, snap.Payments)
	assert.Nil(t, snap.Client)
	assert.False(t, snap.Drawer.IsOpen)
}

func TestTerminal_OpenDrawer(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.terminal.OpenDrawer(ctx, dec("50"))
	assert.True(t, shared.IsValidation(err), "no point of sale selected")

	f.terminal.branch = branchCentral
	f.terminal.pointOfSale = caja1
	f.drawers.On("Open", mock.Anything, int64(7), amountIs("50")).Return(openDrawerAt(12, 1, 7), nil)
	session, err := f.terminal.OpenDrawer(ctx, dec("50"))
	require.NoError(t, err)
	assert.Equal(t, int64(12), session.ID)
	assert.True(t, f.terminal.Snapshot().Drawer.IsOpen)
}
