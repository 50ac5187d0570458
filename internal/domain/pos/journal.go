package pos

import (
	"context"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CommitOutcome is the result of one commit attempt
type CommitOutcome string

const (
	OutcomePending   CommitOutcome = "PENDING"
	OutcomeCommitted CommitOutcome = "COMMITTED"
	OutcomeRejected  CommitOutcome = "REJECTED"
)

// JournalEntry records one sale commit attempt that reached the network
type JournalEntry struct {
	shared.BaseEntity
	IdempotencyKey string            `json:"idempotency_key"`
	CashierID      string            `json:"cashier_id"`
	BranchID       int64             `json:"branch_id"`
	PointOfSaleID  int64             `json:"point_of_sale_id"`
	LineCount      int               `json:"line_count"`
	NetTotal       valueobject.Money `json:"net_total"`
	Outcome        CommitOutcome     `json:"outcome"`
	RemoteSaleID   int64             `json:"remote_sale_id,omitempty"`
	ErrorCode      string            `json:"error_code,omitempty"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}

// NewJournalEntry starts a pending entry for payload
func NewJournalEntry(key, cashierID string, payload CommitPayload) *JournalEntry {
	return &JournalEntry{
		BaseEntity:     shared.NewBaseEntity(),
		IdempotencyKey: key,
		CashierID:      cashierID,
		BranchID:       payload.BranchID,
		PointOfSaleID:  payload.PointOfSaleID,
		LineCount:      len(payload.Lines),
		NetTotal:       valueobject.NewMoneyBOB(payload.Net()).Round(),
		Outcome:        OutcomePending,
	}
}

// Commit marks the attempt as accepted by the backend
func (e *JournalEntry) Commit(saleID int64) {
	now := time.Now()
	e.Outcome = OutcomeCommitted
	e.RemoteSaleID = saleID
	e.CompletedAt = &now
	e.UpdatedAt = now
}

// Reject marks the attempt as failed
func (e *JournalEntry) Reject(err error) {
	now := time.Now()
	e.Outcome = OutcomeRejected
	e.ErrorCode = shared.CodeOf(err)
	if err != nil {
		e.ErrorMessage = err.Error()
	}
	e.CompletedAt = &now
	e.UpdatedAt = now
}

// SaleJournal stores commit attempts
type SaleJournal interface {
	Save(ctx context.Context, entry *JournalEntry) error
	FindByKey(ctx context.Context, key string) (*JournalEntry, error)
	FindByID(ctx context.Context, id uuid.UUID) (*JournalEntry, error)
	ListByCashier(ctx context.Context, cashierID string, limit int) ([]JournalEntry, error)
}
