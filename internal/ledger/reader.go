package ledger

import (
	"eoq-backend/internal/models"
)

// HistoryRecord is a ledger row tagged with the log it belongs to, for
// clients that still think in terms of separate incoming/outgoing
// collections.
type HistoryRecord struct {
	models.StockTransaction
	Collection string `json:"collection"` // "incoming" | "outgoing"
}

// History returns the merged in/out records for one item code, most
// recent first. The result is a point-in-time snapshot; it is not
// linearized against writers running at the same moment.
func (l *Ledger) History(code string) ([]HistoryRecord, error) {
	var txs []models.StockTransaction
	if err := l.db.
		Where("item_code = ?", code).
		Order("created_at DESC, id DESC").
		Find(&txs).Error; err != nil {
		return nil, err
	}

	records := make([]HistoryRecord, 0, len(txs))
	for _, t := range txs {
		collection := "outgoing"
		if t.Type == models.TransactionIn {
			collection = "incoming"
		}
		records = append(records, HistoryRecord{StockTransaction: t, Collection: collection})
	}
	return records, nil
}

// Items returns the registry snapshot, newest first.
func (l *Ledger) Items() ([]models.Item, error) {
	var items []models.Item
	if err := l.db.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ReportRow joins an item with its aggregated history totals. For items
// never touched by DirectUpdateItem, Stock == TotalIn - TotalOut; the
// report doubles as an integrity cross-check.
type ReportRow struct {
	models.Item
	TotalIn  int64 `json:"totalIn"`
	TotalOut int64 `json:"totalOut"`
}

// InventoryReport aggregates the history per item code independently of
// the stored balances.
func (l *Ledger) InventoryReport() ([]ReportRow, error) {
	items, err := l.Items()
	if err != nil {
		return nil, err
	}

	var sums []struct {
		ItemCode string
		Type     models.TransactionType
		Total    int64
	}
	if err := l.db.Model(&models.StockTransaction{}).
		Select("item_code, type, SUM(qty) AS total").
		Group("item_code, type").
		Scan(&sums).Error; err != nil {
		return nil, err
	}

	totalIn := make(map[string]int64, len(sums))
	totalOut := make(map[string]int64, len(sums))
	for _, s := range sums {
		if s.Type == models.TransactionIn {
			totalIn[s.ItemCode] = s.Total
		} else {
			totalOut[s.ItemCode] = s.Total
		}
	}

	rows := make([]ReportRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, ReportRow{
			Item:     item,
			TotalIn:  totalIn[item.Code],
			TotalOut: totalOut[item.Code],
		})
	}
	return rows, nil
}

// OutgoingDemand sums outgoing quantities per item over the whole history.
// Used by the EOQ endpoint as the demand figure D.
func (l *Ledger) OutgoingDemand() (map[string]int64, error) {
	var sums []struct {
		ItemCode string
		Total    int64
	}
	if err := l.db.Model(&models.StockTransaction{}).
		Select("item_code, SUM(qty) AS total").
		Where("type = ?", models.TransactionOut).
		Group("item_code").
		Scan(&sums).Error; err != nil {
		return nil, err
	}
	demand := make(map[string]int64, len(sums))
	for _, s := range sums {
		demand[s.ItemCode] = s.Total
	}
	return demand, nil
}
