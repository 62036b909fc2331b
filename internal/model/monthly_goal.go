package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyGoal is the monetary target for one company and month.
// Unique per (company, year, month); saving again overwrites.
type MonthlyGoal struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	CompanyID uint            `json:"company_id" gorm:"uniqueIndex:idx_company_goal;not null"`
	Year      int             `json:"year" gorm:"column:ano;uniqueIndex:idx_company_goal;not null"`
	Month     int             `json:"month" gorm:"column:mes;uniqueIndex:idx_company_goal;not null"`
	Target    decimal.Decimal `json:"target" gorm:"column:meta_mensal;type:numeric(14,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName keeps the collection name used by the store gateway
func (MonthlyGoal) TableName() string {
	return "metas"
}
