package model

import (
	"time"
)

// Membership represents the association between users and companies.
// It is the sole source of authorization: the role and the permitted
// screen set stored here gate every company-scoped operation.
//
// Deletes are hard: a removed membership leaves no row behind on the
// (company_id, user_id) unique key, so the same user can be invited again.
type Membership struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CompanyID uint      `json:"company_id" gorm:"uniqueIndex:idx_company_user;not null"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_company_user;not null"`
	Role      string    `json:"role" gorm:"type:varchar(50);not null;default:'viewer'"`
	Screens   string    `json:"screens" gorm:"type:text"` // serialized JSON list of screen names
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

// TableName keeps the collection name used by the store gateway
func (Membership) TableName() string {
	return "company_users"
}
