package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles. super_operator manages every tenant; operator is platform
// staff; iso_operator belongs to a single reseller.
const (
	RoleSuperOperator = "super_operator"
	RoleOperator      = "operator"
	RoleIsoOperator   = "iso_operator"
)

// Membership kinds for the user↔ISO membership records. Both kinds grant
// explicit tenant access.
const (
	MembershipOrdinary = "ordinary"
	MembershipAdmin    = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(32);not null"`

	// PrimaryIsoID is the tenant the user belongs to by identity. Grants
	// ordinary access only — never explicit access.
	PrimaryIsoID *uuid.UUID `gorm:"type:uuid;index"`

	// FullAccess lets the user read every tenant. Deliberately ignored by
	// the explicit-access check that gates billing mutations.
	FullAccess bool `gorm:"not null;default:false"`

	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Memberships []IsoMembership `gorm:"foreignKey:UserID"`
}

func (User) TableName() string { return "users" }

// IsoMembership is a direct user↔tenant grant. This record — and only this
// record — confers explicit access to a tenant.
type IsoMembership struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_iso"`
	IsoID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_iso"`
	Kind      string    `gorm:"type:varchar(16);not null;default:'ordinary'"`
	CreatedAt time.Time

	Iso ISO `gorm:"foreignKey:IsoID"`
}

func (IsoMembership) TableName() string { return "iso_memberships" }
