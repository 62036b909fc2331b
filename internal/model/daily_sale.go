package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySale is the total recorded for one company and calendar date.
// Unique per (company, date); a second save on the same date overwrites
// rather than duplicates (last-writer-wins on the unique key).
type DailySale struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	CompanyID uint            `json:"company_id" gorm:"uniqueIndex:idx_company_sale;not null"`
	Date      time.Time       `json:"date" gorm:"column:data_venda;uniqueIndex:idx_company_sale;type:date;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"column:valor_venda;type:numeric(14,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName keeps the collection name used by the store gateway
func (DailySale) TableName() string {
	return "vendas_diarias"
}
