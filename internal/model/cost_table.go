package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
)

// CostTable is a supplier's base cost sheet for one category. It stores one
// representative rate per (modality, channel) pair — not a per-brand matrix —
// plus the global anticipation rate and the PIX components. A nil column
// means the rate line is not offered. Tables are never deleted: a new version
// supersedes the old one and SupersededByID points forward.
type CostTable struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index:idx_cost_tables_supplier_category,unique,where:superseded_by_id IS NULL"`
	Category   string    `gorm:"not null;index:idx_cost_tables_supplier_category,unique,where:superseded_by_id IS NULL"`

	DebitPos       *decimal.Decimal `gorm:"type:decimal(10,4)"`
	DebitOnline    *decimal.Decimal `gorm:"type:decimal(10,4)"`
	CreditPos      *decimal.Decimal `gorm:"type:decimal(10,4)"`
	CreditOnline   *decimal.Decimal `gorm:"type:decimal(10,4)"`
	Credit2xPos    *decimal.Decimal `gorm:"type:decimal(10,4)"`
	Credit2xOnline *decimal.Decimal `gorm:"type:decimal(10,4)"`
	Credit7xPos    *decimal.Decimal `gorm:"type:decimal(10,4)"`
	Credit7xOnline *decimal.Decimal `gorm:"type:decimal(10,4)"`
	VoucherPos     *decimal.Decimal `gorm:"type:decimal(10,4)"`
	VoucherOnline  *decimal.Decimal `gorm:"type:decimal(10,4)"`
	PrepaidPos     *decimal.Decimal `gorm:"type:decimal(10,4)"`
	PrepaidOnline  *decimal.Decimal `gorm:"type:decimal(10,4)"`

	// PIX has a fixed component per transaction plus a percent component;
	// the percent is the base rate used in snapshot composition.
	PixFixed   *decimal.Decimal `gorm:"type:decimal(10,4)"`
	PixPercent *decimal.Decimal `gorm:"type:decimal(10,4)"`

	// Anticipation is brand- and channel-agnostic (one ALL-brand line).
	Anticipation *decimal.Decimal `gorm:"type:decimal(10,4)"`

	CeilingRate *decimal.Decimal `gorm:"type:decimal(10,4)"`
	FloorRate   *decimal.Decimal `gorm:"type:decimal(10,4)"`

	// Brands is the comma-separated, ordered list of card brands the table
	// covers, e.g. "visa,mastercard,elo".
	Brands string `gorm:"not null"`

	Version        int        `gorm:"not null;default:1"`
	SupersededByID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Supplier Supplier `gorm:"foreignKey:SupplierID"`
}

func (CostTable) TableName() string { return "cost_tables" }

// ConfiguredBrands implements pricing.RateSource.
func (t *CostTable) ConfiguredBrands() []pricing.Brand {
	var brands []pricing.Brand
	for _, s := range strings.Split(t.Brands, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		brands = append(brands, pricing.Brand(s))
	}
	return brands
}

// BaseRate implements pricing.RateSource. PIX resolves to the percent
// component regardless of channel.
func (t *CostTable) BaseRate(m pricing.Modality, c pricing.Channel) (decimal.Decimal, bool) {
	var col *decimal.Decimal
	switch m {
	case pricing.ModalityDebit:
		col = pick(c, t.DebitPos, t.DebitOnline)
	case pricing.ModalityCredit:
		col = pick(c, t.CreditPos, t.CreditOnline)
	case pricing.ModalityCredit2x:
		col = pick(c, t.Credit2xPos, t.Credit2xOnline)
	case pricing.ModalityCredit7x:
		col = pick(c, t.Credit7xPos, t.Credit7xOnline)
	case pricing.ModalityVoucher:
		col = pick(c, t.VoucherPos, t.VoucherOnline)
	case pricing.ModalityPrepaid:
		col = pick(c, t.PrepaidPos, t.PrepaidOnline)
	case pricing.ModalityPix:
		col = t.PixPercent
	}
	if col == nil {
		return decimal.Zero, false
	}
	return *col, true
}

// AnticipationRate implements pricing.RateSource.
func (t *CostTable) AnticipationRate() (decimal.Decimal, bool) {
	if t.Anticipation == nil {
		return decimal.Zero, false
	}
	return *t.Anticipation, true
}

func pick(c pricing.Channel, pos, online *decimal.Decimal) *decimal.Decimal {
	if c.OrDefault() == pricing.ChannelOnline {
		return online
	}
	return pos
}
