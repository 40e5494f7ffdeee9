package models

import "time"

// Item is the master record: one row per (name, shop) pair, carrying the
// running stock balance maintained by the ledger.
type Item struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:20;uniqueIndex;not null" json:"code"` // BRG-001
	Name      string    `gorm:"size:100;uniqueIndex:idx_items_name_shop;not null" json:"name"`
	ShopName  string    `gorm:"size:100;uniqueIndex:idx_items_name_shop;not null" json:"shopName"`
	Stock     int64     `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
