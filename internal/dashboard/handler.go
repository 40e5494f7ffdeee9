package dashboard

import (
	"time"

	"eoq-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// assumed unit value used for the stock value headline figure
var unitValue = decimal.NewFromInt(10000)

const lowStockThreshold = 100

type ActivityRow struct {
	ID        uint      `json:"id"`
	ItemName  string    `json:"itemName"`
	Qty       int64     `json:"qty"`
	Date      time.Time `json:"date"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// GET /api/dashboard/summary
func SummaryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var totalItems int64
		if err := db.Model(&models.Item{}).Count(&totalItems).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count items")
		}

		var stats struct {
			TotalStock    int64
			LowStockCount int64
		}
		if err := db.Model(&models.Item{}).
			Select("COALESCE(SUM(stock), 0) AS total_stock, COALESCE(SUM(CASE WHEN stock < ? THEN 1 ELSE 0 END), 0) AS low_stock_count", lowStockThreshold).
			Scan(&stats).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not aggregate stock")
		}

		now := time.Now()
		startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		var monthlyTransactions int64
		if err := db.Model(&models.StockTransaction{}).
			Where("created_at >= ?", startOfMonth).
			Count(&monthlyTransactions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count transactions")
		}

		var recent []models.StockTransaction
		if err := db.Order("created_at DESC, id DESC").Limit(5).Find(&recent).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load recent activity")
		}

		activity := make([]ActivityRow, 0, len(recent))
		for _, tx := range recent {
			label := "out"
			if tx.Type == models.TransactionIn {
				label = "in"
			}
			activity = append(activity, ActivityRow{
				ID:        tx.ID,
				ItemName:  tx.ItemName,
				Qty:       tx.Qty,
				Date:      tx.Date,
				Type:      label,
				CreatedAt: tx.CreatedAt,
			})
		}

		return c.JSON(fiber.Map{
			"error": false,
			"data": fiber.Map{
				"totalItems":          totalItems,
				"stockValue":          decimal.NewFromInt(stats.TotalStock).Mul(unitValue),
				"lowStock":            stats.LowStockCount,
				"monthlyTransactions": monthlyTransactions,
				"recentActivity":      activity,
			},
		})
	}
}
