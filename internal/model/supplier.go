package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is an upstream acquiring supplier whose base cost tables the
// platform resells.
type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Document  string    `gorm:"uniqueIndex;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	CostTables []CostTable `gorm:"foreignKey:SupplierID"`
}

func (Supplier) TableName() string { return "suppliers" }
