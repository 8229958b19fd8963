package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
)

// IsoLink associates an ISO with one supplier cost table and carries the
// approval lifecycle. Links are never deleted — deactivation is a status
// value — and the status column is mutated only through the validation
// service.
type IsoLink struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IsoID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	CostTableID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Status      pricing.LinkStatus `gorm:"type:varchar(32);not null;default:'draft'"`

	// Contract validity window; mutated only by a privileged role.
	ValidFrom  *time.Time
	ValidUntil *time.Time
	AutoRenew  bool `gorm:"not null;default:false"`

	// PendingTableID points at a newer cost table version applied at contract
	// expiry when AutoRenew is set.
	PendingTableID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Iso       ISO       `gorm:"foreignKey:IsoID"`
	CostTable CostTable `gorm:"foreignKey:CostTableID"`
}

func (IsoLink) TableName() string { return "iso_links" }
