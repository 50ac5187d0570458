package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleOrchestrator runs the commit protocol of a terminal's sale draft
type SaleOrchestrator struct {
	sales       pos.SalesGateway
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	journal     pos.SaleJournal
	metrics     Metrics
	logger      *zap.Logger
}

// OrchestratorOption configures a SaleOrchestrator
type OrchestratorOption func(*SaleOrchestrator)

// WithIdempotencyStore enables duplicate-submission detection
func WithIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) OrchestratorOption {
	return func(o *SaleOrchestrator) {
		o.idempotency = store
		o.idemConfig = cfg
	}
}

// WithJournal records every commit attempt
func WithJournal(journal pos.SaleJournal) OrchestratorOption {
	return func(o *SaleOrchestrator) {
		o.journal = journal
	}
}

// WithMetrics reports commit outcomes
func WithMetrics(metrics Metrics) OrchestratorOption {
	return func(o *SaleOrchestrator) {
		o.metrics = metricsOrNoop(metrics)
	}
}

// NewSaleOrchestrator creates a new SaleOrchestrator
func NewSaleOrchestrator(sales pos.SalesGateway, logger *zap.Logger, opts ...OrchestratorOption) *SaleOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &SaleOrchestrator{
		sales:      sales,
		idemConfig: shared.DefaultIdempotencyConfig(),
		metrics:    noopMetrics{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// checkPreconditions runs the local precondition chain in order.
// Nothing here touches the network.
func checkPreconditions(t *Terminal) error {
	if t.pointOfSale.IsZero() {
		return shared.NewValidationError("Select a point of sale")
	}
	if !t.drawer.CanSell() {
		return shared.NewDomainError(shared.CodeDrawerClosed, "The cash drawer is not open for this point of sale")
	}
	if t.cart.IsEmpty() {
		return shared.NewValidationError("The cart is empty")
	}
	if t.branch.IsZero() {
		return shared.NewValidationError("Select a branch")
	}
	net := t.cart.Totals().Net
	if t.ledger.Totals(net).TotalPaid.LessThan(net) {
		return shared.NewValidationError("The amount paid does not cover the sale total")
	}
	return nil
}

// Commit submits the terminal's draft as one sale. A second call while one
// is in flight fails with SUBMISSION_IN_PROGRESS; a key that already
// committed fails with DUPLICATE_SUBMISSION. On failure the draft is kept.
func (o *SaleOrchestrator) Commit(ctx context.Context, t *Terminal, idempotencyKey string) (*CommitResult, error) {
	if !t.submitting.CompareAndSwap(false, true) {
		return nil, shared.ErrSubmissionInProgress
	}
	defer t.submitting.Store(false)
	defer t.lock()()

	if err := checkPreconditions(t); err != nil {
		return nil, err
	}

	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	if err := o.claimKey(ctx, idempotencyKey); err != nil {
		return nil, err
	}

	// Drawer state is read fresh right before the commit.
	view, err := t.drawer.RefreshSessionForPointOfSale(ctx, t.pointOfSale.ID)
	if err != nil {
		o.releaseKey(ctx, idempotencyKey)
		return nil, err
	}
	if !view.IsOpen {
		o.releaseKey(ctx, idempotencyKey)
		return nil, shared.NewDomainError(shared.CodeDrawerClosed, "The cash drawer was closed; check the drawer state")
	}

	payload, err := pos.BuildCommitPayload(
		pos.SaleContext{BranchID: t.branch.ID, PointOfSaleID: t.pointOfSale.ID},
		t.cart, t.ledger, t.client,
	)
	if err != nil {
		o.releaseKey(ctx, idempotencyKey)
		return nil, err
	}

	entry := pos.NewJournalEntry(idempotencyKey, t.cashierID, payload)
	o.record(ctx, entry)

	sale, err := o.sales.CreateSale(ctx, payload, idempotencyKey)
	if err != nil {
		entry.Reject(err)
		o.record(ctx, entry)
		o.releaseKey(ctx, idempotencyKey)
		o.metrics.SaleFailed(ctx, payload.BranchID, shared.CodeOf(err))
		t.logger.Warn("sale commit rejected",
			zap.String("idempotency_key", idempotencyKey),
			zap.Error(err),
		)
		return nil, err
	}

	entry.Commit(sale.ID)
	o.record(ctx, entry)

	net := t.cart.Totals().Net
	paid := t.ledger.Totals(net)
	if sale.NetTotal.IsZero() {
		sale.NetTotal = net
	}

	var client *pos.Client
	if t.client != nil {
		c := *t.client
		client = &c
	}
	t.lastSale = &pos.LastSale{
		ID:          sale.ID,
		NetTotal:    net,
		Client:      client,
		CommittedAt: time.Now(),
	}
	t.resetDraft()

	o.metrics.SaleCommitted(ctx, payload.BranchID, net)
	t.logger.Info("sale committed",
		zap.Int64("sale_id", sale.ID),
		zap.String("idempotency_key", idempotencyKey),
		zap.String("net_total", net.StringFixed(2)),
		zap.Int("lines", len(payload.Lines)),
	)

	return &CommitResult{
		Sale:           sale,
		IdempotencyKey: idempotencyKey,
		TotalPaid:      paid.TotalPaid,
		Change:         paid.Change,
	}, nil
}

// GenerateInvoice requests the invoice of a committed sale. saleID zero
// means the terminal's last sale. Failure leaves the sale untouched.
func (o *SaleOrchestrator) GenerateInvoice(ctx context.Context, t *Terminal, saleID int64, override InvoiceOverride) (*pos.Invoice, error) {
	defer t.lock()()

	var captured *pos.Client
	if t.lastSale != nil && (saleID == 0 || saleID == t.lastSale.ID) {
		saleID = t.lastSale.ID
		captured = t.lastSale.Client
	}
	if saleID == 0 {
		return nil, shared.NewValidationError("There is no sale to invoice")
	}

	req := pos.InvoiceRequest{
		SaleID:    saleID,
		TaxID:     captured.InvoiceTaxID(),
		LegalName: captured.InvoiceName(),
	}
	if override.TaxID != "" {
		req.TaxID = override.TaxID
	}
	if override.LegalName != "" {
		req.LegalName = override.LegalName
	}

	invoice, err := o.sales.GenerateInvoice(ctx, req)
	if err != nil {
		t.logger.Warn("invoice generation failed", zap.Int64("sale_id", saleID), zap.Error(err))
		return nil, err
	}
	if invoice.SaleID == 0 {
		invoice.SaleID = saleID
	}
	if t.lastSale != nil && t.lastSale.ID == saleID {
		t.lastSale.Invoice = invoice
	}
	return invoice, nil
}

func (o *SaleOrchestrator) claimKey(ctx context.Context, key string) error {
	if o.idempotency != nil && o.idemConfig.Enabled {
		fresh, err := o.idempotency.MarkProcessed(ctx, key, o.idemConfig.TTL)
		switch {
		case err == nil && fresh:
			return nil
		case err == nil:
			return o.duplicateOf(ctx, key)
		}
		// The journal stands in while the store is down; the backend still receives the key.
		o.logger.Warn("idempotency store unavailable", zap.String("key", key), zap.Error(err))
	}
	if entry := o.committedAttempt(ctx, key); entry != nil {
		return duplicateError(entry)
	}
	return nil
}

// duplicateOf names the sale a replayed key already produced, when journaled
func (o *SaleOrchestrator) duplicateOf(ctx context.Context, key string) error {
	if entry := o.committedAttempt(ctx, key); entry != nil {
		return duplicateError(entry)
	}
	return shared.ErrDuplicateSubmission
}

func (o *SaleOrchestrator) committedAttempt(ctx context.Context, key string) *pos.JournalEntry {
	if o.journal == nil {
		return nil
	}
	entry, err := o.journal.FindByKey(ctx, key)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			o.logger.Warn("journal lookup failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	if entry.Outcome != pos.OutcomeCommitted {
		return nil
	}
	return entry
}

func duplicateError(entry *pos.JournalEntry) error {
	return shared.NewDomainError(shared.CodeDuplicateSubmission,
		fmt.Sprintf("This submission was already registered as sale %d", entry.RemoteSaleID))
}

func (o *SaleOrchestrator) releaseKey(ctx context.Context, key string) {
	if o.idempotency == nil || !o.idemConfig.Enabled {
		return
	}
	if err := o.idempotency.Release(ctx, key); err != nil {
		o.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (o *SaleOrchestrator) record(ctx context.Context, entry *pos.JournalEntry) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Save(ctx, entry); err != nil {
		o.logger.Warn("failed to record journal entry",
			zap.String("idempotency_key", entry.IdempotencyKey),
			zap.Error(err),
		)
	}
}
