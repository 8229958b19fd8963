package model

import (
	"time"

	"github.com/google/uuid"
)

// OneTimeToken is a persisted, expiring, single-use token (password reset
// etc.). Stored in the database rather than a process-local map so that a
// token issued by one instance can be consumed by another and survives
// restarts.
type OneTimeToken struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TokenHash  string    `gorm:"uniqueIndex;not null"`
	Purpose    string    `gorm:"type:varchar(32);not null"` // password_reset
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt  time.Time `gorm:"not null"`
	ConsumedAt *time.Time
	CreatedAt  time.Time

	User User `gorm:"foreignKey:UserID"`
}

func (OneTimeToken) TableName() string { return "one_time_tokens" }

// Usable reports whether the token is still valid at now: not expired and
// never consumed.
func (t *OneTimeToken) Usable(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}
