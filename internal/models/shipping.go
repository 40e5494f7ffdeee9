package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Shipping struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ShippingNo string          `gorm:"size:20;uniqueIndex;not null" json:"shippingNo"` // SHP-001
	Date       time.Time       `gorm:"not null" json:"date"`
	Name       string          `gorm:"size:100;not null" json:"name"` // recipient / destination
	Price      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}
