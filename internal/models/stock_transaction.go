package models

import "time"

type TransactionType string

const (
	TransactionIn  TransactionType = "in"
	TransactionOut TransactionType = "out"
)

// StockTransaction is one row of the append-only history. Incoming and
// outgoing records share the table; Type is the discriminant, so an edit
// that flips the direction updates the column instead of moving the row
// between two collections.
type StockTransaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ItemCode  string          `gorm:"size:20;index:idx_tx_item_type,priority:1;not null" json:"itemCode"`
	Type      TransactionType `gorm:"size:3;index:idx_tx_item_type,priority:2;not null" json:"type"`
	Date      time.Time       `gorm:"not null" json:"date"` // business date, not creation instant
	ShopName  string          `gorm:"size:100;not null" json:"shopName"`
	ItemName  string          `gorm:"size:100;not null" json:"itemName"` // denormalized at transaction time
	Qty       int64           `gorm:"not null" json:"qty"`               // magnitude; direction lives in Type
	CreatedAt time.Time       `gorm:"index" json:"timestamp"`
}
