package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
)

type SnapshotRepository interface {
	// ReplaceForLink deletes any existing snapshot rows for the link and
	// inserts rows — the idempotent regeneration primitive. Must run in tx.
	ReplaceForLink(ctx context.Context, tx *gorm.DB, linkID uuid.UUID, rows []model.CostSnapshot) error
	DeleteByLink(ctx context.Context, tx *gorm.DB, linkID uuid.UUID) (int64, error)
	FindByKey(ctx context.Context, tx *gorm.DB, linkID uuid.UUID, key pricing.Key) (*model.CostSnapshot, error)
	// FindByIsoKey resolves a snapshot across all of an ISO's links — the
	// public partner API addresses rates by tenant, not by link.
	FindByIsoKey(ctx context.Context, tx *gorm.DB, isoID uuid.UUID, key pricing.Key) (*model.CostSnapshot, error)
	Save(ctx context.Context, tx *gorm.DB, s *model.CostSnapshot) error
	ListByLink(ctx context.Context, linkID uuid.UUID) ([]model.CostSnapshot, error)
	ListByIso(ctx context.Context, isoID uuid.UUID) ([]model.CostSnapshot, error)
	DB() *gorm.DB
}

type snapshotRepo struct{ conn *gorm.DB }

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository { return &snapshotRepo{conn: db} }

func (r *snapshotRepo) db(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.conn
}

func (r *snapshotRepo) ReplaceForLink(ctx context.Context, tx *gorm.DB, linkID uuid.UUID, rows []model.CostSnapshot) error {
	if err := r.db(tx).WithContext(ctx).Where("iso_link_id = ?", linkID).Delete(&model.CostSnapshot{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db(tx).WithContext(ctx).Create(&rows).Error
}

func (r *snapshotRepo) DeleteByLink(ctx context.Context, tx *gorm.DB, linkID uuid.UUID) (int64, error) {
	res := r.db(tx).WithContext(ctx).Where("iso_link_id = ?", linkID).Delete(&model.CostSnapshot{})
	return res.RowsAffected, res.Error
}

func (r *snapshotRepo) FindByKey(ctx context.Context, tx *gorm.DB, linkID uuid.UUID, key pricing.Key) (*model.CostSnapshot, error) {
	var s model.CostSnapshot
	err := r.db(tx).WithContext(ctx).
		Where("iso_link_id = ? AND brand = ? AND modality = ? AND channel = ?",
			linkID, key.Brand, key.Modality, key.Channel.OrDefault()).
		First(&s).Error
	return &s, err
}

func (r *snapshotRepo) FindByIsoKey(ctx context.Context, tx *gorm.DB, isoID uuid.UUID, key pricing.Key) (*model.CostSnapshot, error) {
	var s model.CostSnapshot
	err := r.db(tx).WithContext(ctx).
		Joins("JOIN iso_links ON iso_links.id = cost_snapshots.iso_link_id").
		Where("iso_links.iso_id = ? AND cost_snapshots.brand = ? AND cost_snapshots.modality = ? AND cost_snapshots.channel = ?",
			isoID, key.Brand, key.Modality, key.Channel.OrDefault()).
		First(&s).Error
	return &s, err
}

func (r *snapshotRepo) Save(ctx context.Context, tx *gorm.DB, s *model.CostSnapshot) error {
	return r.db(tx).WithContext(ctx).Save(s).Error
}

func (r *snapshotRepo) ListByLink(ctx context.Context, linkID uuid.UUID) ([]model.CostSnapshot, error) {
	var rows []model.CostSnapshot
	err := r.conn.WithContext(ctx).Where("iso_link_id = ?", linkID).
		Order("modality, brand, channel").Find(&rows).Error
	return rows, err
}

func (r *snapshotRepo) ListByIso(ctx context.Context, isoID uuid.UUID) ([]model.CostSnapshot, error) {
	var rows []model.CostSnapshot
	err := r.conn.WithContext(ctx).
		Joins("JOIN iso_links ON iso_links.id = cost_snapshots.iso_link_id").
		Where("iso_links.iso_id = ?", isoID).
		Order("cost_snapshots.iso_link_id, cost_snapshots.modality, cost_snapshots.brand").
		Find(&rows).Error
	return rows, err
}

func (r *snapshotRepo) DB() *gorm.DB { return r.conn }
