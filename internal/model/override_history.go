package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
)

// Override sources. Portal writes carry the acting user; partner-API writes
// carry only the tenant, the key is the actor.
const (
	OverrideSourcePortal     = "portal"
	OverrideSourcePartnerAPI = "partner_api"
)

// OverrideHistory records every raw margin value edit, independent of the
// link lifecycle. Append-only.
type OverrideHistory struct {
	ID       uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IsoID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Category string           `gorm:"not null"`
	Brand    pricing.Brand    `gorm:"type:varchar(16);not null"`
	Product  pricing.Modality `gorm:"type:varchar(16);not null"`
	Channel  pricing.Channel  `gorm:"type:varchar(8);not null"`

	PreviousValue *string
	NewValue      string `gorm:"not null"`
	// Action is "create" for a first write on a key, "update" afterwards.
	Action    string     `gorm:"type:varchar(16);not null"`
	Source    string     `gorm:"type:varchar(16);not null;default:'portal'"`
	ActorID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time

	Iso   ISO   `gorm:"foreignKey:IsoID"`
	Actor *User `gorm:"foreignKey:ActorID"`
}

func (OverrideHistory) TableName() string { return "override_history" }
