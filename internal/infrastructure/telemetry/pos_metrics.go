package telemetry

import (
	"context"
	"errors"

	apppos "github.com/erp/pos/internal/application/pos"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys of the POS metrics
var (
	AttrBranchID      = attribute.Key("branch_id")
	AttrPointOfSaleID = attribute.Key("point_of_sale_id")
	AttrErrorCode     = attribute.Key("error_code")
)

// SaleAmountBuckets are bucket boundaries for sale totals in BOB
var SaleAmountBuckets = []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// DiscrepancyBuckets are bucket boundaries for the absolute drawer discrepancy in BOB
var DiscrepancyBuckets = []float64{0, 1, 5, 10, 50, 100, 500}

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// POSMetrics records sale and drawer events
type POSMetrics struct {
	salesCommitted *Counter
	saleAmount     *Histogram
	saleFailures   *Counter
	drawersOpened  *Counter
	drawersClosed  *Counter
	discrepancy    *Histogram
}

var _ apppos.Metrics = (*POSMetrics)(nil)

// NewPOSMetrics registers the POS instruments on meter
func NewPOSMetrics(meter metric.Meter) (*POSMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &POSMetrics{}
	var err error
	if m.salesCommitted, err = NewCounter(meter, "pos_sales_committed_total", "Sales accepted by the backend", "{sales}"); err != nil {
		return nil, err
	}
	if m.saleAmount, err = NewHistogram(meter, "pos_sale_amount", "Net total of committed sales", "BOB", SaleAmountBuckets...); err != nil {
		return nil, err
	}
	if m.saleFailures, err = NewCounter(meter, "pos_sale_failures_total", "Sale commits that failed after reaching the network", "{sales}"); err != nil {
		return nil, err
	}
	if m.drawersOpened, err = NewCounter(meter, "pos_drawer_opened_total", "Drawer sessions opened", "{sessions}"); err != nil {
		return nil, err
	}
	if m.drawersClosed, err = NewCounter(meter, "pos_drawer_closed_total", "Drawer sessions closed", "{sessions}"); err != nil {
		return nil, err
	}
	if m.discrepancy, err = NewHistogram(meter, "pos_drawer_discrepancy", "Absolute difference between counted and expected cash at close", "BOB", DiscrepancyBuckets...); err != nil {
		return nil, err
	}
	return m, nil
}

// SaleCommitted implements apppos.Metrics
func (m *POSMetrics) SaleCommitted(ctx context.Context, branchID int64, net decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrBranchID.Int64(branchID)}
	m.salesCommitted.Inc(ctx, attrs...)
	m.saleAmount.Record(ctx, net.InexactFloat64(), attrs...)
}

// SaleFailed implements apppos.Metrics
func (m *POSMetrics) SaleFailed(ctx context.Context, branchID int64, code string) {
	if code == "" {
		code = "UNKNOWN"
	}
	m.saleFailures.Inc(ctx, AttrBranchID.Int64(branchID), AttrErrorCode.String(code))
}

// DrawerOpened implements apppos.Metrics
func (m *POSMetrics) DrawerOpened(ctx context.Context, pointOfSaleID int64) {
	m.drawersOpened.Inc(ctx, AttrPointOfSaleID.Int64(pointOfSaleID))
}

// DrawerClosed implements apppos.Metrics
func (m *POSMetrics) DrawerClosed(ctx context.Context, pointOfSaleID int64, discrepancy decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrPointOfSaleID.Int64(pointOfSaleID)}
	m.drawersClosed.Inc(ctx, attrs...)
	m.discrepancy.Record(ctx, discrepancy.Abs().InexactFloat64(), attrs...)
}
