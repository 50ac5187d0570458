package pos

import (
	"context"

	"github.com/shopspring/decimal"
)

// Metrics receives POS business events
type Metrics interface {
	SaleCommitted(ctx context.Context, branchID int64, net decimal.Decimal)
	SaleFailed(ctx context.Context, branchID int64, code string)
	DrawerOpened(ctx context.Context, pointOfSaleID int64)
	DrawerClosed(ctx context.Context, pointOfSaleID int64, discrepancy decimal.Decimal)
}

type noopMetrics struct{}

func (noopMetrics) SaleCommitted(context.Context, int64, decimal.Decimal) {}
func (noopMetrics) SaleFailed(context.Context, int64, string)             {}
func (noopMetrics) DrawerOpened(context.Context, int64)                   {}
func (noopMetrics) DrawerClosed(context.Context, int64, decimal.Decimal)  {}

func metricsOrNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
