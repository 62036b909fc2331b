package model

import (
	"time"

	"gorm.io/gorm"
)

// Company represents a tenant. Every other domain record is scoped to
// exactly one company and is never visible across companies.
type Company struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	OwnerID   uint           `json:"owner_id" gorm:"index;not null"`
	Active    bool           `json:"active" gorm:"default:true"` // deactivated companies cannot be selected
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName keeps the collection name used by the store gateway
func (Company) TableName() string {
	return "companies"
}
