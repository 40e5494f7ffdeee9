package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a daily sales summary row. Amounts are stored as fixed-point
// decimals; serba35/serba75 are the flat-price product lines.
type Sale struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	SalesNo        string          `gorm:"size:20;uniqueIndex;not null" json:"salesNo"` // PJL-001
	Date           time.Time       `gorm:"not null" json:"date"`
	RemainingMoney decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"remainingMoney"`
	Expense        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"expense"`
	TotalAll       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"totalAll"`
	Serba35        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"serba35"`
	Serba75        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"serba75"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
