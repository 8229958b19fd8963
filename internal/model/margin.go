package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
)

// Margin is the ISO's markup for one pricing key of a link. Margins are
// independent of link status and may exist before the link is validated.
type Margin struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IsoLinkID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_margins_key"`
	Brand     pricing.Brand    `gorm:"type:varchar(16);not null;uniqueIndex:idx_margins_key"`
	Modality  pricing.Modality `gorm:"type:varchar(16);not null;uniqueIndex:idx_margins_key"`
	Channel   pricing.Channel  `gorm:"type:varchar(8);not null;uniqueIndex:idx_margins_key"`
	Value     decimal.Decimal  `gorm:"type:decimal(10,4);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	IsoLink IsoLink `gorm:"foreignKey:IsoLinkID"`
}

func (Margin) TableName() string { return "iso_margins" }
