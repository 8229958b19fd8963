package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
)

type IsoRepository interface {
	Create(ctx context.Context, iso *model.ISO) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ISO, error)
	List(ctx context.Context) ([]model.ISO, error)
	SetOutbankMargin(ctx context.Context, id uuid.UUID, margin decimal.Decimal) error
}

type isoRepo struct{ conn *gorm.DB }

func NewIsoRepository(db *gorm.DB) IsoRepository { return &isoRepo{conn: db} }

func (r *isoRepo) Create(ctx context.Context, iso *model.ISO) error {
	return r.conn.WithContext(ctx).Create(iso).Error
}

func (r *isoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ISO, error) {
	var iso model.ISO
	err := r.conn.WithContext(ctx).First(&iso, "id = ?", id).Error
	return &iso, err
}

func (r *isoRepo) List(ctx context.Context) ([]model.ISO, error) {
	var isos []model.ISO
	err := r.conn.WithContext(ctx).Where("active = true").Order("name").Find(&isos).Error
	return isos, err
}

func (r *isoRepo) SetOutbankMargin(ctx context.Context, id uuid.UUID, margin decimal.Decimal) error {
	return r.conn.WithContext(ctx).Model(&model.ISO{}).Where("id = ?", id).
		Update("outbank_margin", margin).Error
}
