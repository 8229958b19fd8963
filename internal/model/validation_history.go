package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
)

// ValidationHistory records every link status transition. Append-only —
// rows are never updated or deleted.
type ValidationHistory struct {
	ID             uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IsoLinkID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	PreviousStatus pricing.LinkStatus `gorm:"type:varchar(32);not null"`
	NewStatus      pricing.LinkStatus `gorm:"type:varchar(32);not null"`
	ActorID        uuid.UUID          `gorm:"type:uuid;not null"`
	// Reason is required when NewStatus is rejected, optional otherwise.
	Reason    *string
	CreatedAt time.Time

	IsoLink IsoLink `gorm:"foreignKey:IsoLinkID"`
	Actor   User    `gorm:"foreignKey:ActorID"`
}

func (ValidationHistory) TableName() string { return "validation_history" }
