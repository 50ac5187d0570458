package models

import (
	"time"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleJournalModel is the persistence model of a commit attempt
type SaleJournalModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CreatedAt      time.Time       `gorm:"not null;index"`
	UpdatedAt      time.Time       `gorm:"not null"`
	IdempotencyKey string          `gorm:"type:varchar(64);not null;index"`
	CashierID      string          `gorm:"type:varchar(64);not null;index"`
	BranchID       int64           `gorm:"not null"`
	PointOfSaleID  int64           `gorm:"not null"`
	LineCount      int             `gorm:"not null"`
	NetTotal       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency       string          `gorm:"type:varchar(3);not null"`
	Outcome        string          `gorm:"type:varchar(16);not null;index"`
	RemoteSaleID   int64
	ErrorCode      string `gorm:"type:varchar(64)"`
	ErrorMessage   string `gorm:"type:text"`
	CompletedAt    *time.Time
}

// TableName returns the table name for GORM
func (SaleJournalModel) TableName() string {
	return "sale_journal"
}

// SaleJournalModelFromDomain maps a journal entry to its row
func SaleJournalModelFromDomain(e *pos.JournalEntry) *SaleJournalModel {
	return &SaleJournalModel{
		ID:             e.ID,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		IdempotencyKey: e.IdempotencyKey,
		CashierID:      e.CashierID,
		BranchID:       e.BranchID,
		PointOfSaleID:  e.PointOfSaleID,
		LineCount:      e.LineCount,
		NetTotal:       e.NetTotal.Amount(),
		Currency:       string(e.NetTotal.Currency()),
		Outcome:        string(e.Outcome),
		RemoteSaleID:   e.RemoteSaleID,
		ErrorCode:      e.ErrorCode,
		ErrorMessage:   e.ErrorMessage,
		CompletedAt:    e.CompletedAt,
	}
}

// ToDomain maps the row back to a journal entry
func (m *SaleJournalModel) ToDomain() *pos.JournalEntry {
	net, err := valueobject.NewMoney(m.NetTotal, valueobject.Currency(m.Currency))
	if err != nil {
		net = valueobject.NewMoneyBOB(m.NetTotal)
	}
	return &pos.JournalEntry{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		IdempotencyKey: m.IdempotencyKey,
		CashierID:      m.CashierID,
		BranchID:       m.BranchID,
		PointOfSaleID:  m.PointOfSaleID,
		LineCount:      m.LineCount,
		NetTotal:       net,
		Outcome:        pos.CommitOutcome(m.Outcome),
		RemoteSaleID:   m.RemoteSaleID,
		ErrorCode:      m.ErrorCode,
		ErrorMessage:   m.ErrorMessage,
		CompletedAt:    m.CompletedAt,
	}
}
