package model

import (
	"time"

	"github.com/google/uuid"
)

// APIKey maps a partner-presented key to exactly one ISO. Only the SHA-256
// hash of the key is stored; the plaintext is shown once at mint time.
type APIKey struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	KeyHash    string    `gorm:"uniqueIndex;not null"`
	IsoID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Active     bool      `gorm:"not null;default:true"`
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Iso ISO `gorm:"foreignKey:IsoID"`
}

func (APIKey) TableName() string { return "api_keys" }
