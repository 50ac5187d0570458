package pos

import (
	"context"
	"testing"
	"time"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSalesHistoryService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	page := shared.NewPaginated([]pos.Sale{{ID: 1}}, 1, 1, 20)
	f.sales.On("ListSales", ctx, mock.MatchedBy(func(filter pos.SaleFilter) bool {
		return filter.Page == 1 && filter.PageSize == 20 && filter.BranchID == 2
	})).Return(page, nil)

	svc := NewSalesHistoryService(f.sales, f.deps.MasterData, nil, nil)
	result, err := svc.List(ctx, pos.SaleFilter{BranchID: 2})
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err = svc.List(ctx, pos.SaleFilter{From: &from, To: &to})
	assert.True(t, shared.IsValidation(err))
}

func TestSalesHistoryService_GetAndCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.sales.On("GetSale", ctx, int64(5)).Return(&pos.Sale{ID: 5}, nil)
	f.sales.On("UpdateSaleStatus", ctx, int64(5), int64(3)).Return(&pos.Sale{ID: 5, Status: pos.NamedRef{ID: 3, Name: "Anulada"}}, nil)

	svc := NewSalesHistoryService(f.sales, f.deps.MasterData, nil, nil)
	sale, err := svc.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sale.ID)

	cancelled, err := svc.Cancel(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Anulada", cancelled.Status.Name)

	_, err = svc.Get(ctx, 0)
	assert.True(t, shared.IsValidation(err))
	_, err = svc.Cancel(ctx, -1)
	assert.True(t, shared.IsValidation(err))
}

func TestSalesHistoryService_Attempts(t *testing.T) {
	ctx := context.Background()
	journal := newMemoryJournal()
	entry := pos.NewJournalEntry("k", "42", pos.CommitPayload{BranchID: 1, PointOfSaleID: 7})
	require.NoError(t, journal.Save(ctx, entry))

	svc := NewSalesHistoryService(nil, nil, journal, nil)
	attempts, err := svc.Attempts(ctx, "42", 0)
	require.NoError(t, err)
	assert.Len(t, attempts, 1)

	none, err := NewSalesHistoryService(nil, nil, nil, nil).Attempts(ctx, "42", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}
