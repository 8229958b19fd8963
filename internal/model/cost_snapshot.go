package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
)

// CostSnapshot is the billable materialization of one pricing key for a
// validated link. CustoBase is copied from the cost table at generation time
// and never changes; MarginIso mirrors the current margin and TaxaFinal is
// recomputed on every margin write. Snapshot rows exist ONLY while the link
// is validated — leaving that status deletes them, it does not archive them.
// Billing reads exclusively from this table.
type CostSnapshot struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IsoLinkID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cost_snapshots_key"`
	Brand     pricing.Brand    `gorm:"type:varchar(16);not null;uniqueIndex:idx_cost_snapshots_key"`
	Modality  pricing.Modality `gorm:"type:varchar(16);not null;uniqueIndex:idx_cost_snapshots_key"`
	Channel   pricing.Channel  `gorm:"type:varchar(8);not null;uniqueIndex:idx_cost_snapshots_key"`

	CustoBase decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	MarginIso decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	TaxaFinal decimal.Decimal `gorm:"type:decimal(10,4);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	IsoLink IsoLink `gorm:"foreignKey:IsoLinkID"`
}

func (CostSnapshot) TableName() string { return "cost_snapshots" }

// Recompute applies a new margin, keeping the taxa_final = custo_base +
// margin_iso law.
func (s *CostSnapshot) Recompute(margin decimal.Decimal) {
	s.MarginIso = margin
	s.TaxaFinal = s.CustoBase.Add(margin)
}
