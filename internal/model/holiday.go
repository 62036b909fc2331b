package model

import (
	"time"
)

// Holiday is a company-scoped calendar date excluded from business-day
// counts. Unique per (company, date).
type Holiday struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CompanyID uint      `json:"company_id" gorm:"uniqueIndex:idx_company_holiday;not null"`
	Date      time.Time `json:"date" gorm:"column:data;uniqueIndex:idx_company_holiday;type:date;not null"`
	Label     string    `json:"label" gorm:"column:descricao;type:varchar(100)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the collection name used by the store gateway
func (Holiday) TableName() string {
	return "feriados"
}
