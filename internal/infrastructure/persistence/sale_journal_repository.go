package persistence

import (
	"context"
	"errors"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxJournalPage = 200

// GormSaleJournal implements pos.SaleJournal using GORM
type GormSaleJournal struct {
	db *gorm.DB
}

// NewGormSaleJournal creates a new journal repository
func NewGormSaleJournal(db *gorm.DB) *GormSaleJournal {
	return &GormSaleJournal{db: db}
}

// Save inserts the entry or updates it in place
func (r *GormSaleJournal) Save(ctx context.Context, entry *pos.JournalEntry) error {
	model := models.SaleJournalModelFromDomain(entry)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
}

// FindByKey returns the latest attempt made with key
func (r *GormSaleJournal) FindByKey(ctx context.Context, key string) (*pos.JournalEntry, error) {
	var model models.SaleJournalModel
	if err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds an attempt by its id
func (r *GormSaleJournal) FindByID(ctx context.Context, id uuid.UUID) (*pos.JournalEntry, error) {
	var model models.SaleJournalModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByCashier returns a cashier's most recent attempts, newest first
func (r *GormSaleJournal) ListByCashier(ctx context.Context, cashierID string, limit int) ([]pos.JournalEntry, error) {
	if limit <= 0 || limit > maxJournalPage {
		limit = maxJournalPage
	}
	var rows []models.SaleJournalModel
	if err := r.db.WithContext(ctx).
		Where("cashier_id = ?", cashierID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]pos.JournalEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

var _ pos.SaleJournal = (*GormSaleJournal)(nil)
