package audit

import (
	"eoq-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/audit-logs
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := db.Order("created_at DESC, id DESC").Limit(200)

		if entityType := c.Query("entity_type"); entityType != "" {
			query = query.Where("entity_type = ?", entityType)
		}

		var logs []models.AuditLog
		if err := query.Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}

		return c.JSON(fiber.Map{"error": false, "data": logs})
	}
}
