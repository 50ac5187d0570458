package pos

import (
	"context"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DrawerManager is the single source of truth for whether a sale can be
// processed. It is not safe for concurrent use; Terminal serializes access.
type DrawerManager struct {
	gateway pos.DrawerGateway
	drawer  *pos.Drawer
	onClose func()
	metrics Metrics
	logger  *zap.Logger
}

// NewDrawerManager creates a new DrawerManager
func NewDrawerManager(gateway pos.DrawerGateway, metrics Metrics, logger *zap.Logger) *DrawerManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DrawerManager{
		gateway: gateway,
		drawer:  pos.NewDrawer(),
		metrics: metricsOrNoop(metrics),
		logger:  logger,
	}
}

// SetCloseHook registers the reset fired after a successful close
func (m *DrawerManager) SetCloseHook(fn func()) {
	m.onClose = fn
}

// Status returns the current projection
func (m *DrawerManager) Status() pos.DrawerStatusView {
	return m.drawer.View()
}

// CanSell reports whether the drawer of the active point of sale is open
func (m *DrawerManager) CanSell() bool {
	return m.drawer.State().CanSell()
}

// CheckOpenSessionForCurrentUser looks for any drawer open under the
// current user. When found, the caller adopts its branch and point of sale.
func (m *DrawerManager) CheckOpenSessionForCurrentUser(ctx context.Context) (pos.DrawerStatusView, *pos.DrawerSession, error) {
	own, err := m.gateway.OwnOpen(ctx)
	if err != nil {
		m.logger.Warn("failed to check own drawer session", zap.Error(err))
		return m.drawer.View(), nil, err
	}
	if !own.IsOpen() {
		return m.drawer.View(), nil, nil
	}
	m.drawer.Sync(own.PointOfSale.ID, own, own)
	return m.drawer.View(), own, nil
}

// RefreshSessionForPointOfSale re-synchronizes the projection for
// pointOfSaleID. On failure the drawer is treated as closed and the error
// is returned alongside the closed view.
func (m *DrawerManager) RefreshSessionForPointOfSale(ctx context.Context, pointOfSaleID int64) (pos.DrawerStatusView, error) {
	if pointOfSaleID == 0 {
		m.drawer.Reset(0)
		return m.drawer.View(), shared.NewValidationError("Select a point of sale")
	}

	here, err := m.gateway.ForPointOfSale(ctx, pointOfSaleID)
	if err != nil {
		m.drawer.Reset(pointOfSaleID)
		m.logger.Warn("failed to refresh drawer session",
			zap.Int64("point_of_sale_id", pointOfSaleID),
			zap.Error(err),
		)
		return m.drawer.View(), err
	}

	var own *pos.DrawerSession
	if !here.IsOpen() {
		// Only tells OPEN_ELSEWHERE from NO_SESSION; permissions are the same.
		own, err = m.gateway.OwnOpen(ctx)
		if err != nil {
			m.logger.Debug("own session lookup failed during refresh", zap.Error(err))
			own = nil
		}
	}
	m.drawer.Sync(pointOfSaleID, here, own)
	return m.drawer.View(), nil
}

// OpenSession opens a drawer at pointOfSaleID with a non-negative opening amount
func (m *DrawerManager) OpenSession(ctx context.Context, pointOfSaleID int64, openingAmount decimal.Decimal) (*pos.DrawerSession, error) {
	if pointOfSaleID == 0 {
		return nil, shared.NewValidationError("Select a point of sale before opening the drawer")
	}
	if openingAmount.IsNegative() {
		return nil, shared.NewValidationError("Opening amount cannot be negative")
	}

	session, err := m.gateway.Open(ctx, pointOfSaleID, openingAmount)
	if err != nil {
		return nil, err
	}
	if session.PointOfSale.ID == 0 {
		session.PointOfSale.ID = pointOfSaleID
	}
	if err := m.drawer.Opened(session); err != nil {
		return nil, err
	}

	m.metrics.DrawerOpened(ctx, pointOfSaleID)
	m.logger.Info("drawer opened",
		zap.Int64("session_id", session.ID),
		zap.Int64("point_of_sale_id", pointOfSaleID),
		zap.String("opening_amount", openingAmount.StringFixed(2)),
	)
	return session, nil
}

// CloseSession closes the active session with the counted cash.
// sessionID zero means the active session. A successful close fires the
// close hook so the in-progress sale is discarded.
func (m *DrawerManager) CloseSession(ctx context.Context, sessionID int64, actualClosingAmount decimal.Decimal) (*pos.DrawerSession, error) {
	active, err := m.drawer.ActiveSession()
	if err != nil {
		return nil, err
	}
	if sessionID != 0 && sessionID != active.ID {
		return nil, shared.NewValidationError("The drawer session is not the active one")
	}
	if actualClosingAmount.IsNegative() {
		return nil, shared.NewValidationError("Closing amount cannot be negative")
	}

	closed, err := m.gateway.Close(ctx, active.ID, actualClosingAmount)
	if err != nil {
		return nil, err
	}
	if closed == nil {
		snapshot := *active
		snapshot.Status = pos.DrawerClosed
		snapshot.ActualClosingAmount = actualClosingAmount
		closed = &snapshot
	}

	pointOfSaleID := m.drawer.PointOfSaleID()
	m.drawer.Closed()
	if m.onClose != nil {
		m.onClose()
	}

	m.metrics.DrawerClosed(ctx, pointOfSaleID, closed.Discrepancy)
	m.logger.Info("drawer closed",
		zap.Int64("session_id", active.ID),
		zap.Int64("point_of_sale_id", pointOfSaleID),
		zap.String("actual_amount", actualClosingAmount.StringFixed(2)),
		zap.String("discrepancy", closed.Discrepancy.StringFixed(2)),
	)
	return closed, nil
}

// Reset forgets the projection, e.g. when no point of sale is selected
func (m *DrawerManager) Reset(pointOfSaleID int64) {
	m.drawer.Reset(pointOfSaleID)
}
