package ledger

import (
	"errors"
	"fmt"
	"time"

	"eoq-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Ledger is the only write path that touches an item's stock balance and
// its transaction history together. Every mutation runs as one database
// transaction: either the balance adjustment and the history row both
// land, or neither does.
type Ledger struct {
	db  *gorm.DB
	log *logrus.Logger
}

func New(db *gorm.DB, log *logrus.Logger) *Ledger {
	return &Ledger{db: db, log: log}
}

// createRetries bounds how often an implicit item creation is retried when
// a concurrent writer grabs the same code or (name, shop) pair first.
const createRetries = 3

// IncomingResult reports the resolved item code and whether the stock-in
// created the item on the fly.
type IncomingResult struct {
	Code    string `json:"code"`
	Created bool   `json:"created"`
}

// RecordIncoming books qty units into (itemName, shopName). An unknown
// pair is created with a fresh code inside the same transaction, so two
// concurrent first-time stock-ins cannot both invent the item: the unique
// indexes reject the loser and the whole attempt is retried.
func (l *Ledger) RecordIncoming(itemName, shopName string, date time.Time, qty int64) (*IncomingResult, error) {
	if err := validateEntry(itemName, shopName, date, qty); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		res := IncomingResult{}
		lastErr = l.db.Transaction(func(tx *gorm.DB) error {
			var item models.Item
			err := tx.Where("name = ? AND shop_name = ?", itemName, shopName).First(&item).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				code, cerr := nextItemCode(tx)
				if cerr != nil {
					return cerr
				}
				item = models.Item{Code: code, Name: itemName, ShopName: shopName, Stock: 0}
				if cerr := tx.Create(&item).Error; cerr != nil {
					return cerr
				}
				res.Created = true
			case err != nil:
				return err
			}
			res.Code = item.Code

			if uerr := tx.Model(&models.Item{}).Where("code = ?", item.Code).
				Update("stock", gorm.Expr("stock + ?", qty)).Error; uerr != nil {
				return uerr
			}

			return tx.Create(&models.StockTransaction{
				ItemCode: item.Code,
				Type:     models.TransactionIn,
				Date:     date,
				ShopName: shopName,
				ItemName: itemName,
				Qty:      qty,
			}).Error
		})
		if lastErr == nil {
			return &res, nil
		}
		if !errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			return nil, lastErr
		}
		l.log.WithFields(logrus.Fields{
			"item": itemName, "shop": shopName, "attempt": attempt + 1,
		}).Warn("item create conflicted, retrying")
	}
	return nil, fmt.Errorf("%w: item create kept conflicting: %v", ErrConflict, lastErr)
}

// RecordOutgoing books qty units out of an existing (itemName, shopName).
// The balance check and the deduction are one conditional UPDATE, so two
// concurrent stock-outs can never jointly overdraw the item.
func (l *Ledger) RecordOutgoing(itemName, shopName string, date time.Time, qty int64) (string, error) {
	if err := validateEntry(itemName, shopName, date, qty); err != nil {
		return "", err
	}

	var code string
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.Where("name = ? AND shop_name = ?", itemName, shopName).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: item %q at shop %q", ErrNotFound, itemName, shopName)
			}
			return err
		}

		res := tx.Model(&models.Item{}).
			Where("code = ? AND stock >= ?", item.Code, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: item %s holds %d, requested %d", ErrInsufficientStock, item.Code, item.Stock, qty)
		}
		code = item.Code

		return tx.Create(&models.StockTransaction{
			ItemCode: item.Code,
			Type:     models.TransactionOut,
			Date:     date,
			ShopName: shopName,
			ItemName: itemName,
			Qty:      qty,
		}).Error
	})
	return code, err
}

// TransactionEdit carries the replacement values for a history record.
// An empty Type keeps the record's current direction.
type TransactionEdit struct {
	Qty      int64
	Date     time.Time
	ShopName string
	Type     models.TransactionType
}

// EditTransaction rewrites a history record in place and applies exactly
// the difference between its old and new signed effect to the item's
// balance. A direction flip is a column update on the shared table, not a
// move between collections, so record and balance stay atomic.
func (l *Ledger) EditTransaction(id uint, edit TransactionEdit) error {
	if edit.Qty <= 0 {
		return fmt.Errorf("%w: qty must be positive", ErrValidation)
	}
	if edit.Type != "" && edit.Type != models.TransactionIn && edit.Type != models.TransactionOut {
		return fmt.Errorf("%w: type must be 'in' or 'out'", ErrValidation)
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		var rec models.StockTransaction
		if err := tx.First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: transaction %d", ErrNotFound, id)
			}
			return err
		}

		newType := edit.Type
		if newType == "" {
			newType = rec.Type
		}
		adjustment := signedQty(newType, edit.Qty) - signedQty(rec.Type, rec.Qty)

		if adjustment != 0 {
			res := tx.Model(&models.Item{}).
				Where("code = ? AND stock + ? >= 0", rec.ItemCode, adjustment).
				Update("stock", gorm.Expr("stock + ?", adjustment))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Either the master row is gone or the delta would
				// overdraw it; look once more to tell the two apart.
				var item models.Item
				if err := tx.Where("code = ?", rec.ItemCode).First(&item).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: master item %s", ErrNotFound, rec.ItemCode)
					}
					return err
				}
				return fmt.Errorf("%w: editing transaction %d would leave item %s at %d",
					ErrInvalidState, id, rec.ItemCode, item.Stock+adjustment)
			}
		}

		updates := map[string]interface{}{
			"type": newType,
			"qty":  edit.Qty,
		}
		if !edit.Date.IsZero() {
			updates["date"] = edit.Date
		}
		if edit.ShopName != "" {
			updates["shop_name"] = edit.ShopName
		}
		return tx.Model(&rec).Updates(updates).Error
	})
}

func validateEntry(itemName, shopName string, date time.Time, qty int64) error {
	if itemName == "" {
		return fmt.Errorf("%w: itemName is required", ErrValidation)
	}
	if shopName == "" {
		return fmt.Errorf("%w: shopName is required", ErrValidation)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if qty <= 0 {
		return fmt.Errorf("%w: qty must be positive", ErrValidation)
	}
	return nil
}

func signedQty(t models.TransactionType, qty int64) int64 {
	if t == models.TransactionIn {
		return qty
	}
	return -qty
}

// nextItemCode must run inside the creating transaction. The unique index
// on items.code is the real uniqueness guarantee.
func nextItemCode(tx *gorm.DB) (string, error) {
	var last models.Item
	err := tx.Order("created_at DESC, id DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NextCode("BRG", ""), nil
	}
	if err != nil {
		return "", err
	}
	return NextCode("BRG", last.Code), nil
}
