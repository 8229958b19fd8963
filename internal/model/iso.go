package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ISO is a reseller tenant (Independent Sales Organization).
type ISO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"not null"`
	Document string    `gorm:"uniqueIndex;not null"`
	// Hostname is the slug the front-door router uses to resolve the tenant.
	Hostname     string  `gorm:"uniqueIndex;not null"`
	ContactEmail *string

	// OutbankMargin is the platform-side margin for this ISO. A link cannot
	// be validated while it is unset or zero.
	OutbankMargin *decimal.Decimal `gorm:"type:decimal(10,4)"`

	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Links []IsoLink `gorm:"foreignKey:IsoID"`
}

func (ISO) TableName() string { return "isos" }

// HasOutbankMargin reports whether the validation precondition is satisfied.
func (i *ISO) HasOutbankMargin() bool {
	return i.OutbankMargin != nil && i.OutbankMargin.GreaterThan(decimal.Zero)
}
