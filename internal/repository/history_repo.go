package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
)

// HistoryRepository owns the two append-only audit ledgers. There are no
// update or delete methods on purpose.
type HistoryRepository interface {
	AppendValidation(ctx context.Context, tx *gorm.DB, entry *model.ValidationHistory) error
	ListValidationByLink(ctx context.Context, linkID uuid.UUID) ([]model.ValidationHistory, error)
	ListValidationByIso(ctx context.Context, isoID uuid.UUID) ([]model.ValidationHistory, error)
	AppendOverride(ctx context.Context, tx *gorm.DB, entry *model.OverrideHistory) error
	ListOverrideByIso(ctx context.Context, isoID uuid.UUID) ([]model.OverrideHistory, error)
}

type historyRepo struct{ conn *gorm.DB }

func NewHistoryRepository(db *gorm.DB) HistoryRepository { return &historyRepo{conn: db} }

func (r *historyRepo) db(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.conn
}

func (r *historyRepo) AppendValidation(ctx context.Context, tx *gorm.DB, entry *model.ValidationHistory) error {
	return r.db(tx).WithContext(ctx).Create(entry).Error
}

func (r *historyRepo) ListValidationByLink(ctx context.Context, linkID uuid.UUID) ([]model.ValidationHistory, error) {
	var entries []model.ValidationHistory
	err := r.conn.WithContext(ctx).Preload("Actor").
		Where("iso_link_id = ?", linkID).Order("created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *historyRepo) ListValidationByIso(ctx context.Context, isoID uuid.UUID) ([]model.ValidationHistory, error) {
	var entries []model.ValidationHistory
	err := r.conn.WithContext(ctx).Preload("Actor").
		Joins("JOIN iso_links ON iso_links.id = validation_history.iso_link_id").
		Where("iso_links.iso_id = ?", isoID).
		Order("validation_history.created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *historyRepo) AppendOverride(ctx context.Context, tx *gorm.DB, entry *model.OverrideHistory) error {
	return r.db(tx).WithContext(ctx).Create(entry).Error
}

func (r *historyRepo) ListOverrideByIso(ctx context.Context, isoID uuid.UUID) ([]model.OverrideHistory, error) {
	var entries []model.OverrideHistory
	err := r.conn.WithContext(ctx).Where("iso_id = ?", isoID).Order("created_at DESC").Find(&entries).Error
	return entries, err
}
