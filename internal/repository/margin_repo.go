package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
)

type MarginRepository interface {
	// Upsert writes the margin for its (link, brand, modality, channel) key,
	// inserting or overwriting. Runs inside tx when given.
	Upsert(ctx context.Context, tx *gorm.DB, m *model.Margin) error
	FindByKey(ctx context.Context, tx *gorm.DB, linkID uuid.UUID, key pricing.Key) (*model.Margin, error)
	ListByLink(ctx context.Context, tx *gorm.DB, linkID uuid.UUID) ([]model.Margin, error)
	DB() *gorm.DB
}

type marginRepo struct{ conn *gorm.DB }

func NewMarginRepository(db *gorm.DB) MarginRepository { return &marginRepo{conn: db} }

func (r *marginRepo) db(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.conn
}

func (r *marginRepo) Upsert(ctx context.Context, tx *gorm.DB, m *model.Margin) error {
	return r.db(tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "iso_link_id"}, {Name: "brand"}, {Name: "modality"}, {Name: "channel"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(m).Error
}

func (r *marginRepo) FindByKey(ctx context.Context, tx *gorm.DB, linkID uuid.UUID, key pricing.Key) (*model.Margin, error) {
	var m model.Margin
	err := r.db(tx).WithContext(ctx).
		Where("iso_link_id = ? AND brand = ? AND modality = ? AND channel = ?",
			linkID, key.Brand, key.Modality, key.Channel.OrDefault()).
		First(&m).Error
	return &m, err
}

func (r *marginRepo) ListByLink(ctx context.Context, tx *gorm.DB, linkID uuid.UUID) ([]model.Margin, error) {
	var margins []model.Margin
	err := r.db(tx).WithContext(ctx).Where("iso_link_id = ?", linkID).Find(&margins).Error
	return margins, err
}

func (r *marginRepo) DB() *gorm.DB { return r.conn }
