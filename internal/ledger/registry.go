package ledger

import (
	"errors"
	"fmt"

	"eoq-backend/internal/models"

	"gorm.io/gorm"
)

// Item registry operations. CreateItem goes through the same code
// generation and conflict retry as the implicit stock-in upsert;
// DirectUpdateItem and DeleteItem bypass the ledger invariant entirely and
// exist as an administrative escape hatch, so callers are expected to
// audit-log them.

func (l *Ledger) FindByCode(code string) (*models.Item, error) {
	var item models.Item
	if err := l.db.Where("code = ?", code).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, code)
		}
		return nil, err
	}
	return &item, nil
}

func (l *Ledger) FindByNameAndShop(name, shop string) (*models.Item, error) {
	var item models.Item
	if err := l.db.Where("name = ? AND shop_name = ?", name, shop).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item %q at shop %q", ErrNotFound, name, shop)
		}
		return nil, err
	}
	return &item, nil
}

// CreateItem registers an item explicitly, without a ledger entry. The
// stored stock starts at initialStock even though no history backs it;
// that matches the administrative contract, not the ledger invariant.
func (l *Ledger) CreateItem(name, shop string, initialStock int64) (*models.Item, error) {
	if name == "" || shop == "" {
		return nil, fmt.Errorf("%w: name and shopName are required", ErrValidation)
	}
	if initialStock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}

	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		var item models.Item
		lastErr = l.db.Transaction(func(tx *gorm.DB) error {
			code, err := nextItemCode(tx)
			if err != nil {
				return err
			}
			item = models.Item{Code: code, Name: name, ShopName: shop, Stock: initialStock}
			return tx.Create(&item).Error
		})
		if lastErr == nil {
			return &item, nil
		}
		if !errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("%w: item create kept conflicting: %v", ErrConflict, lastErr)
}

// DirectUpdateItem overwrites name, shop and stored stock. Unsafe by
// design: the running balance is no longer the sum of the history until a
// later administrative correction reconciles them.
func (l *Ledger) DirectUpdateItem(id uint, name, shop string, stock int64) (*models.Item, error) {
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrInvalidState)
	}
	var item models.Item
	if err := l.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item id %d", ErrNotFound, id)
		}
		return nil, err
	}
	item.Name = name
	item.ShopName = shop
	item.Stock = stock
	if err := l.db.Save(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: another item already uses (%q, %q)", ErrConflict, name, shop)
		}
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes the master row. History rows keep their itemCode; no
// referential cleanup happens here.
func (l *Ledger) DeleteItem(id uint) (*models.Item, error) {
	var item models.Item
	if err := l.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item id %d", ErrNotFound, id)
		}
		return nil, err
	}
	if err := l.db.Delete(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}
