package model

import (
	"time"
)

// WorkingDayConfig stores which weekdays count as working days for a
// company. Weekdays is a serialized JSON list of ints, 0=Monday..6=Sunday.
// At most one row per company; absence means the Monday-Friday default.
type WorkingDayConfig struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CompanyID uint      `json:"company_id" gorm:"uniqueIndex;not null"`
	Weekdays  string    `json:"weekdays" gorm:"column:dias_trabalho;type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the collection name used by the store gateway
func (WorkingDayConfig) TableName() string {
	return "config_dias_uteis"
}
