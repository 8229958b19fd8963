package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
)

type CostTableRepository interface {
	Create(ctx context.Context, t *model.CostTable) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CostTable, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.CostTable, error)
	// Supersede links oldID forward to the replacing table. Cost tables are
	// never deleted.
	Supersede(ctx context.Context, oldID, newID uuid.UUID) error
}

type costTableRepo struct{ conn *gorm.DB }

func NewCostTableRepository(db *gorm.DB) CostTableRepository { return &costTableRepo{conn: db} }

func (r *costTableRepo) Create(ctx context.Context, t *model.CostTable) error {
	return r.conn.WithContext(ctx).Create(t).Error
}

func (r *costTableRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CostTable, error) {
	var t model.CostTable
	err := r.conn.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *costTableRepo) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.CostTable, error) {
	var tables []model.CostTable
	err := r.conn.WithContext(ctx).Where("supplier_id = ?", supplierID).
		Order("category, version").Find(&tables).Error
	return tables, err
}

func (r *costTableRepo) Supersede(ctx context.Context, oldID, newID uuid.UUID) error {
	return r.conn.WithContext(ctx).Model(&model.CostTable{}).Where("id = ?", oldID).
		Update("superseded_by_id", newID).Error
}
