package pos

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TerminalDeps are the collaborators shared by every terminal
type TerminalDeps struct {
	Catalog    *CatalogService
	Drawers    pos.DrawerGateway
	Clients    pos.ClientGateway
	MasterData *MasterDataService
	Metrics    Metrics
	Logger     *zap.Logger
}

// Terminal holds one cashier's sale draft and context. Operations are
// serialized by mu; submitting is the re-entrancy guard of a sale commit.
type Terminal struct {
	mu sync.Mutex

	cashierID  string
	catalog    *CatalogService
	clients    pos.ClientGateway
	masterData *MasterDataService
	drawer     *DrawerManager
	logger     *zap.Logger

	branch      pos.NamedRef
	pointOfSale pos.NamedRef
	cart        *pos.Cart
	ledger      *pos.PaymentLedger
	client      *pos.Client
	lastSale    *pos.LastSale
	synced      bool

	submitting atomic.Bool
	lastUsed   atomic.Int64
}

// NewTerminal creates a terminal for cashierID
func NewTerminal(cashierID string, deps TerminalDeps) *Terminal {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("cashier_id", cashierID))

	t := &Terminal{
		cashierID:  cashierID,
		catalog:    deps.Catalog,
		clients:    deps.Clients,
		masterData: deps.MasterData,
		drawer:     NewDrawerManager(deps.Drawers, deps.Metrics, logger),
		logger:     logger,
		cart:       pos.NewCart(),
		ledger:     pos.NewPaymentLedger(),
	}
	t.drawer.SetCloseHook(t.resetDraft)
	t.touch()
	return t
}

// CashierID returns the owner of the terminal
func (t *Terminal) CashierID() string {
	return t.cashierID
}

func (t *Terminal) touch() {
	t.lastUsed.Store(time.Now().UnixNano())
}

// LastUsed returns when the terminal was last operated
func (t *Terminal) LastUsed() time.Time {
	return time.Unix(0, t.lastUsed.Load())
}

// resetDraft discards the in-progress sale. Callers hold mu.
func (t *Terminal) resetDraft() {
	t.cart.Clear()
	t.ledger.Clear()
	t.client = nil
}

func (t *Terminal) lock() func() {
	t.mu.Lock()
	t.touch()
	return t.mu.Unlock
}

// Init loads the terminal on mount: a drawer open under the cashier
// anywhere wins, otherwise defaults (or the first branch and point of sale) are used.
func (t *Terminal) Init(ctx context.Context, defaults TerminalDefaults) (TerminalSnapshot, error) {
	defer t.lock()()

	_, own, err := t.drawer.CheckOpenSessionForCurrentUser(ctx)
	if err != nil {
		t.logger.Warn("continuing init without own session", zap.Error(err))
	} else {
		t.synced = true
	}
	if own != nil {
		if err := t.adoptSession(ctx, own); err != nil {
			return t.snapshot(), err
		}
		t.logger.Info("resumed drawer session",
			zap.Int64("session_id", own.ID),
			zap.Int64("branch_id", t.branch.ID),
			zap.Int64("point_of_sale_id", t.pointOfSale.ID),
		)
		return t.snapshot(), nil
	}

	branches, err := t.masterData.Branches(ctx)
	if err != nil {
		return t.snapshot(), err
	}
	if len(branches) == 0 {
		return t.snapshot(), nil
	}
	branch := branches[0]
	if defaults.BranchID != 0 {
		if ref, ok := findRef(branches, defaults.BranchID); ok {
			branch = ref
		}
	}
	if err := t.selectBranch(ctx, branch, defaults.PointOfSaleID); err != nil {
		return t.snapshot(), err
	}
	return t.snapshot(), nil
}

// Resume re-attaches a terminal that has not been initialized, e.g. one
// recreated after idle eviction, to a drawer still open under the cashier.
// Failures are logged and retried on the next call.
func (t *Terminal) Resume(ctx context.Context) {
	defer t.lock()()
	if t.synced {
		return
	}
	_, own, err := t.drawer.CheckOpenSessionForCurrentUser(ctx)
	if err != nil {
		return
	}
	t.synced = true
	if own == nil {
		return
	}
	if err := t.adoptSession(ctx, own); err != nil {
		t.logger.Warn("failed to resume drawer session", zap.Error(err))
		return
	}
	t.logger.Info("resumed drawer session after restart",
		zap.Int64("session_id", own.ID),
		zap.Int64("point_of_sale_id", t.pointOfSale.ID),
	)
}

func (t *Terminal) adoptSession(ctx context.Context, session *pos.DrawerSession) error {
	branch := session.Branch
	if branch.Name == "" && branch.ID != 0 {
		if ref, err := t.masterData.Branch(ctx, branch.ID); err == nil {
			branch = ref
		}
	}
	point := session.PointOfSale
	if point.Name == "" && branch.ID != 0 {
		if ref, err := t.masterData.PointOfSale(ctx, branch.ID, point.ID); err == nil {
			point = ref
		}
	}
	t.branch = branch
	t.pointOfSale = point
	return nil
}

// SelectBranch switches branch, loads its points of sale and selects the first
func (t *Terminal) SelectBranch(ctx context.Context, branchID int64) (TerminalSnapshot, error) {
	defer t.lock()()

	branch, err := t.masterData.Branch(ctx, branchID)
	if err != nil {
		return t.snapshot(), err
	}
	if err := t.selectBranch(ctx, branch, 0); err != nil {
		return t.snapshot(), err
	}
	return t.snapshot(), nil
}

func (t *Terminal) selectBranch(ctx context.Context, branch pos.NamedRef, preferredPointOfSale int64) error {
	points, err := t.masterData.PointsOfSale(ctx, branch.ID)
	if err != nil {
		return err
	}
	if branch.ID != t.branch.ID {
		t.resetDraft()
	}
	t.synced = true
	t.branch = branch
	if len(points) == 0 {
		t.pointOfSale = pos.NamedRef{}
		t.drawer.Reset(0)
		return nil
	}
	point := points[0]
	if preferredPointOfSale != 0 {
		if ref, ok := findRef(points, preferredPointOfSale); ok {
			point = ref
		}
	}
	return t.selectPointOfSale(ctx, point)
}

// SelectPointOfSale switches to a point of sale of the active branch and
// re-synchronizes its drawer
func (t *Terminal) SelectPointOfSale(ctx context.Context, pointOfSaleID int64) (TerminalSnapshot, error) {
	defer t.lock()()

	if t.branch.IsZero() {
		return t.snapshot(), shared.NewValidationError("Select a branch")
	}
	point, err := t.masterData.PointOfSale(ctx, t.branch.ID, pointOfSaleID)
	if err != nil {
		return t.snapshot(), err
	}
	if err := t.selectPointOfSale(ctx, point); err != nil {
		return t.snapshot(), err
	}
	return t.snapshot(), nil
}

func (t *Terminal) selectPointOfSale(ctx context.Context, point pos.NamedRef) error {
	if point.ID != t.pointOfSale.ID {
		t.resetDraft()
	}
	t.synced = true
	t.pointOfSale = point
	_, err := t.drawer.RefreshSessionForPointOfSale(ctx, point.ID)
	return err
}

// DrawerStatus re-reads the drawer of the active point of sale
func (t *Terminal) DrawerStatus(ctx context.Context) (pos.DrawerStatusView, error) {
	defer t.lock()()
	if t.pointOfSale.IsZero() {
		return t.drawer.Status(), nil
	}
	return t.drawer.RefreshSessionForPointOfSale(ctx, t.pointOfSale.ID)
}

// OpenDrawer opens the drawer of the active point of sale
func (t *Terminal) OpenDrawer(ctx context.Context, openingAmount decimal.Decimal) (*pos.DrawerSession, error) {
	defer t.lock()()
	return t.drawer.OpenSession(ctx, t.pointOfSale.ID, openingAmount)
}

// CloseDrawer closes the active drawer session and discards the draft
func (t *Terminal) CloseDrawer(ctx context.Context, sessionID int64, actualClosingAmount decimal.Decimal) (*pos.DrawerSession, error) {
	defer t.lock()()
	return t.drawer.CloseSession(ctx, sessionID, actualClosingAmount)
}

func (t *Terminal) requireOpenDrawer() error {
	if !t.drawer.CanSell() {
		return shared.NewDomainError(shared.CodeDrawerClosed, "Open the cash drawer before selling")
	}
	return nil
}

// AddItem adds one unit of a product after re-reading its live branch stock
func (t *Terminal) AddItem(ctx context.Context, productID int64) (pos.CartLine, error) {
	defer t.lock()()

	if err := t.requireOpenDrawer(); err != nil {
		return pos.CartLine{}, err
	}
	if t.branch.IsZero() {
		return pos.CartLine{}, shared.NewValidationError("Select a branch")
	}
	product, err := t.catalog.GetProduct(ctx, productID)
	if err != nil {
		return pos.CartLine{}, err
	}
	stock, err := t.catalog.LiveStock(ctx, t.branch.ID, productID)
	if err != nil {
		return pos.CartLine{}, err
	}
	return t.cart.Add(*product, stock)
}

// AddByBarcode adds one unit of the product matching a scanned code
func (t *Terminal) AddByBarcode(ctx context.Context, code string) (pos.CartLine, error) {
	defer t.lock()()

	if err := t.requireOpenDrawer(); err != nil {
		return pos.CartLine{}, err
	}
	if t.branch.IsZero() {
		return pos.CartLine{}, shared.NewValidationError("Select a branch")
	}
	match, err := t.catalog.SearchByBarcode(ctx, t.branch.ID, code)
	if err != nil {
		return pos.CartLine{}, err
	}
	return t.cart.Add(match.Product, match.Stock)
}

// SetQuantity changes a line quantity within its cached stock
func (t *Terminal) SetQuantity(productID, quantity int64) (TerminalSnapshot, error) {
	defer t.lock()()
	if err := t.requireOpenDrawer(); err != nil {
		return t.snapshot(), err
	}
	err := t.cart.SetQuantity(productID, quantity)
	return t.snapshot(), err
}

// SetDiscount sets a line discount
func (t *Terminal) SetDiscount(productID int64, discount decimal.Decimal) (TerminalSnapshot, error) {
	defer t.lock()()
	if err := t.requireOpenDrawer(); err != nil {
		return t.snapshot(), err
	}
	err := t.cart.SetDiscount(productID, discount)
	return t.snapshot(), err
}

// RemoveItem removes a line
func (t *Terminal) RemoveItem(productID int64) (TerminalSnapshot, error) {
	defer t.lock()()
	if err := t.requireOpenDrawer(); err != nil {
		return t.snapshot(), err
	}
	err := t.cart.Remove(productID)
	return t.snapshot(), err
}

// ClearCart discards all lines and payments
func (t *Terminal) ClearCart() TerminalSnapshot {
	defer t.lock()()
	t.cart.Clear()
	t.ledger.Clear()
	return t.snapshot()
}

// AddPayment appends a payment with the method name denormalized for display
func (t *Terminal) AddPayment(ctx context.Context, input AddPaymentInput) (pos.Payment, error) {
	defer t.lock()()

	if err := t.requireOpenDrawer(); err != nil {
		return pos.Payment{}, err
	}
	if !input.Amount.IsPositive() {
		return pos.Payment{}, shared.NewValidationError("Payment amount must be greater than zero")
	}
	method, err := t.masterData.PaymentMethod(ctx, input.MethodID)
	if err != nil {
		return pos.Payment{}, err
	}
	return t.ledger.Add(method, input.Amount, strings.TrimSpace(input.Reference))
}

// RemovePayment removes the payment at index
func (t *Terminal) RemovePayment(index int) (TerminalSnapshot, error) {
	defer t.lock()()
	err := t.ledger.Remove(index)
	return t.snapshot(), err
}

// LookupClient finds a client by exact tax id and selects it
func (t *Terminal) LookupClient(ctx context.Context, taxID string) (*pos.Client, error) {
	defer t.lock()()

	taxID = strings.TrimSpace(taxID)
	if taxID == "" {
		return nil, shared.NewValidationError("Tax id is required")
	}
	candidates, err := t.clients.SearchClients(ctx, taxID)
	if err != nil {
		return nil, err
	}
	found, ok := pos.FindByTaxID(candidates, taxID)
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "No client with tax id "+taxID)
	}
	t.client = &found
	return &found, nil
}

// CreateClient registers a client and selects it
func (t *Terminal) CreateClient(ctx context.Context, input CreateClientInput) (*pos.Client, error) {
	defer t.lock()()

	client, err := pos.NormalizeClient(pos.Client{
		TaxID:     input.TaxID,
		Name:      input.Name,
		LegalName: input.LegalName,
		Email:     input.Email,
	})
	if err != nil {
		return nil, err
	}
	created, err := t.clients.CreateClient(ctx, client)
	if err != nil {
		return nil, err
	}
	t.client = created
	t.logger.Info("client registered", zap.Int64("client_id", created.ID))
	return created, nil
}

// RefreshClient replaces the selected client when it is the one edited
func (t *Terminal) RefreshClient(client pos.Client) {
	defer t.lock()()
	if t.client != nil && t.client.ID == client.ID {
		c := client
		t.client = &c
	}
}

// ClearClient unselects the client
func (t *Terminal) ClearClient() TerminalSnapshot {
	defer t.lock()()
	t.client = nil
	return t.snapshot()
}

// Snapshot returns the current state
func (t *Terminal) Snapshot() TerminalSnapshot {
	defer t.lock()()
	return t.snapshot()
}

func (t *Terminal) snapshot() TerminalSnapshot {
	totals := t.cart.Totals()
	var client *pos.Client
	if t.client != nil {
		c := *t.client
		client = &c
	}
	var last *pos.LastSale
	if t.lastSale != nil {
		l := *t.lastSale
		last = &l
	}
	return TerminalSnapshot{
		CashierID:     t.cashierID,
		Branch:        t.branch,
		PointOfSale:   t.pointOfSale,
		Drawer:        t.drawer.Status(),
		Lines:         t.cart.Lines(),
		Totals:        totals,
		Payments:      t.ledger.Payments(),
		PaymentTotals: t.ledger.Totals(totals.Net),
		CanSettle:     t.ledger.CanSettle(totals.Net, t.cart.LineCount()),
		Client:        client,
		LastSale:      last,
		Submitting:    t.submitting.Load(),
	}
}
