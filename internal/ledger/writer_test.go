package ledger_test

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"eoq-backend/internal/database"
	"eoq-backend/internal/ledger"
	"eoq-backend/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// one named in-memory database per test so tests stay isolated
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// sqlite allows a single writer; serialize at the pool
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return ledger.New(newTestDB(t), log)
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRecordIncoming_CreatesItemOnFirstStockIn(t *testing.T) {
	l := newTestLedger(t)

	res, err := l.RecordIncoming("Widget", "ShopA", day("2024-01-01"), 50)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "BRG-001", res.Code)

	item, err := l.FindByCode("BRG-001")
	require.NoError(t, err)
	assert.EqualValues(t, 50, item.Stock)

	// a second stock-in for the same pair must reuse the item
	res, err = l.RecordIncoming("Widget", "ShopA", day("2024-01-02"), 25)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "BRG-001", res.Code)

	item, err = l.FindByCode("BRG-001")
	require.NoError(t, err)
	assert.EqualValues(t, 75, item.Stock)
}

func TestRecordIncoming_AssignsSequentialCodes(t *testing.T) {
	l := newTestLedger(t)

	for i, name := range []string{"Alpha", "Beta", "Gamma"} {
		res, err := l.RecordIncoming(name, "ShopA", day("2024-01-01"), 10)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("BRG-%03d", i+1), res.Code)
	}
}

func TestRecordIncoming_Validation(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.RecordIncoming("", "ShopA", day("2024-01-01"), 10)
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, err = l.RecordIncoming("Widget", "", day("2024-01-01"), 10)
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, err = l.RecordIncoming("Widget", "ShopA", time.Time{}, 10)
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, err = l.RecordIncoming("Widget", "ShopA", day("2024-01-01"), 0)
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, err = l.RecordIncoming("Widget", "ShopA", day("2024-01-01"), -5)
	assert.ErrorIs(t, err, ledger.ErrValidation)

	// nothing must have been written
	items, err := l.Items()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRecordOutgoing_Scenario(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.RecordIncoming("Widget", "ShopA", day("2024-01-01"), 50)
	require.NoError(t, err)

	code, err := l.RecordOutgoing("Widget", "ShopA", day("2024-01-02"), 20)
	require.NoError(t, err)
	assert.Equal(t, "BRG-001", code)

	item, err := l.FindByCode("BRG-001")
	require.NoError(t, err)
	assert.EqualValues(t, 30, item.Stock)

	_, err = l.RecordOutgoing("Widget", "ShopA", day("2024-01-03"), 100)
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	// the failed attempt must not leave any trace
	item, err = l.FindByCode("BRG-001")
	require.NoError(t, err)
	assert.EqualValues(t, 30, item.Stock)

	history, err := l.History("BRG-001")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRecordOutgoing_UnknownItem(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.RecordOutgoing("Ghost", "ShopX", day("2024-01-01"), 1)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestRecordOutgoing_ShopIsPartOfTheKey(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.RecordIncoming("Widget", "ShopA", day("2024-01-01"), 50)
	require.NoError(t, err)

	// same name, different shop: distinct item, so no stock to take
	_, err = l.RecordOutgoing("Widget", "ShopB", day("2024-01-02"), 1)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestEditTransaction_QtyDelta(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.RecordIncoming("Widget", "ShopA", day("2024-01-01"), 10)
	require.NoError(t, err)

	history, err := l.History("BRG-001")
	require.NoError(t, err)
	require.Len(t, history, 1)

	// 10 -> 4 means the balance drops by exactly 6
	err = l.EditTransaction(history[0].ID, ledger.TransactionEdit{Qty: 4})
	require.NoError(t, err)

	item, err := l.FindByCode("BRG-001")
	require.NoError(t, err)
	assert.EqualValues(t, 4, item.Stock)

	history, err = l.History("BRG-001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.EqualValues(t, 4, history[0].Qty)
	assert.Equal(t, models.TransactionIn, history[0].Type)
}

func TestEditTransaction_TypeFlipMovesRecordAndDoublesEffect(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.RecordIncoming("Widget", "ShopA", day("2024-01-01"), 10)
	require.NoError(t, err)
	_, err = l.RecordIncoming("Widget", "ShopA", day("2024-01-02"), 30)
	require.NoError(t, err)

	history, err := l.History("BRG-001")
	require.NoError(t, err)
	require.Len(t, history, 2)
	first := history[1] // oldest, the qty-10 record

	// flipping in -> out with qty unchanged swings the balance by 2*qty
	err = l.EditTransaction(first.ID, ledger.TransactionEdit{Qty: 10, Type: models.TransactionOut})
	require.NoError(t, err)

	item, err := l.FindByCode("BRG-001")
	require.NoError(t, err)
	assert.EqualValues(t, 20, item.Stock)

	history, err = l.History("BRG-001")
	require.NoError(t, err)
	for _, rec := range history {
		if rec.ID == first.ID {
			assert.Equal(t, models.TransactionOut, rec.Type)
			assert.Equal(t, "outgoing", rec.Collection)
		}
	}
}

func TestEditTransaction_RejectedWhenStockWouldGoNegative(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.RecordIncoming("Widget", "ShopA", day("2024-01-01"), 10)
	require.NoError(t, err)

	history, err := l.History("BRG-001")
	require.NoError(t, err)
	require.Len(t, history, 1)

	// flipping the only incoming record would leave the item at -10
	err = l.EditTransaction(history[0].ID, ledger.TransactionEdit{Qty: 10, Type: models.TransactionOut})
	assert.ErrorIs(t, err, ledger.ErrInvalidState)

	// no partial effect: balance and record untouched
	item, err := l.FindByCode("BRG-001")
	require.NoError(t, err)
	assert.EqualValues(t, 10, item.Stock)

	history, err = l.History("BRG-001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.TransactionIn, history[0].Type)
}

func TestEditTransaction_UnknownRecord(t *testing.T) {
	l := newTestLedger(t)

	err := l.EditTransaction(12345, ledger.TransactionEdit{Qty: 1})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestEditTransaction_Validation(t *testing.T) {
	l := newTestLedger(t)

	err := l.EditTransaction(1, ledger.TransactionEdit{Qty: 0})
	assert.ErrorIs(t, err, ledger.ErrValidation)

	err = l.EditTransaction(1, ledger.TransactionEdit{Qty: 5, Type: "sideways"})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestConcurrentOutgoing_ExactlyOneWins(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.RecordIncoming("Widget", "ShopA", day("2024-01-01"), 50)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.RecordOutgoing("Widget", "ShopA", day("2024-01-02"), 30)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			assert.ErrorIs(t, err, ledger.ErrInsufficientStock)
		}
	}
	require.Equal(t, 1, failures, "exactly one of the two withdrawals must fail")

	item, err := l.FindByCode("BRG-001")
	require.NoError(t, err)
	assert.EqualValues(t, 20, item.Stock)

	history, err := l.History("BRG-001")
	require.NoError(t, err)
	assert.Len(t, history, 2) // the incoming record plus the single winner
}

func TestInvariant_StockEqualsSignedHistorySum(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.RecordIncoming("Widget", "ShopA", day("2024-01-01"), 100)
	require.NoError(t, err)
	_, err = l.RecordIncoming("Bolt", "ShopB", day("2024-01-01"), 40)
	require.NoError(t, err)
	_, err = l.RecordOutgoing("Widget", "ShopA", day("2024-01-02"), 30)
	require.NoError(t, err)
	_, err = l.RecordIncoming("Widget", "ShopA", day("2024-01-03"), 5)
	require.NoError(t, err)
	_, err = l.RecordOutgoing("Bolt", "ShopB", day("2024-01-04"), 40)
	require.NoError(t, err)

	// throw in a rejected operation, it must not skew anything
	_, err = l.RecordOutgoing("Bolt", "ShopB", day("2024-01-05"), 1)
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)

	// and an edit: Widget's outgoing 30 becomes 10, balance +20
	history, err := l.History("BRG-001")
	require.NoError(t, err)
	for _, rec := range history {
		if rec.Type == models.TransactionOut {
			require.NoError(t, l.EditTransaction(rec.ID, ledger.TransactionEdit{Qty: 10}))
		}
	}

	report, err := l.InventoryReport()
	require.NoError(t, err)
	require.Len(t, report, 2)
	for _, row := range report {
		assert.EqualValues(t, row.TotalIn-row.TotalOut, row.Stock,
			"item %s: stock must equal the signed history sum", row.Code)
		assert.GreaterOrEqual(t, row.Stock, int64(0))
	}
}
