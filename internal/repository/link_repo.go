package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
)

type LinkRepository interface {
	Create(ctx context.Context, link *model.IsoLink) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.IsoLink, error)
	// FindByIDForUpdate loads the link inside tx with a FOR UPDATE row lock.
	// Every status transition must read through this method so two
	// concurrent transitions on the same link serialize.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.IsoLink, error)
	ListByIso(ctx context.Context, isoID uuid.UUID) ([]model.IsoLink, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.IsoLink, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status pricing.LinkStatus) error
	SetValidity(ctx context.Context, link *model.IsoLink) error
	Renew(ctx context.Context, link *model.IsoLink) error
	DB() *gorm.DB
}

type linkRepo struct{ conn *gorm.DB }

func NewLinkRepository(db *gorm.DB) LinkRepository { return &linkRepo{conn: db} }

func (r *linkRepo) db(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.conn
}

func (r *linkRepo) Create(ctx context.Context, link *model.IsoLink) error {
	return r.conn.WithContext(ctx).Create(link).Error
}

func (r *linkRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.IsoLink, error) {
	var link model.IsoLink
	err := r.conn.WithContext(ctx).Preload("CostTable").Preload("Iso").First(&link, "id = ?", id).Error
	return &link, err
}

func (r *linkRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.IsoLink, error) {
	var link model.IsoLink
	err := r.db(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "iso_links"}}).
		First(&link, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	// Associations are loaded outside the locking clause — FOR UPDATE on a
	// joined preload is not portable.
	if err := r.db(tx).WithContext(ctx).First(&link.CostTable, "id = ?", link.CostTableID).Error; err != nil {
		return nil, err
	}
	if err := r.db(tx).WithContext(ctx).First(&link.Iso, "id = ?", link.IsoID).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *linkRepo) ListByIso(ctx context.Context, isoID uuid.UUID) ([]model.IsoLink, error) {
	var links []model.IsoLink
	err := r.conn.WithContext(ctx).Preload("CostTable").Where("iso_id = ?", isoID).Order("created_at").Find(&links).Error
	return links, err
}

func (r *linkRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.IsoLink, error) {
	var links []model.IsoLink
	err := r.conn.WithContext(ctx).Where("id IN ?", ids).Find(&links).Error
	return links, err
}

func (r *linkRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status pricing.LinkStatus) error {
	return r.db(tx).WithContext(ctx).Model(&model.IsoLink{}).Where("id = ?", id).Update("status", status).Error
}

func (r *linkRepo) SetValidity(ctx context.Context, link *model.IsoLink) error {
	return r.conn.WithContext(ctx).Model(&model.IsoLink{}).Where("id = ?", link.ID).
		Updates(map[string]interface{}{
			"valid_from":  link.ValidFrom,
			"valid_until": link.ValidUntil,
			"auto_renew":  link.AutoRenew,
		}).Error
}

func (r *linkRepo) Renew(ctx context.Context, link *model.IsoLink) error {
	return r.conn.WithContext(ctx).Model(&model.IsoLink{}).Where("id = ?", link.ID).
		Updates(map[string]interface{}{
			"cost_table_id":    link.CostTableID,
			"pending_table_id": link.PendingTableID,
			"valid_from":       link.ValidFrom,
			"valid_until":      link.ValidUntil,
		}).Error
}

func (r *linkRepo) DB() *gorm.DB { return r.conn }
