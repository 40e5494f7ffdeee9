package items

import (
	"errors"

	"eoq-backend/internal/audit"
	"eoq-backend/internal/auth"
	"eoq-backend/internal/ledger"
	"eoq-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ledgerError maps the ledger's failure taxonomy onto HTTP statuses.
func ledgerError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrInvalidState),
		errors.Is(err, ledger.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func currentUser(c *fiber.Ctx) (uint, string) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
	userName, _ := c.Locals(auth.CtxUserNameKey).(string)
	return userID, userName
}

// GET /api/items
func ListItemsHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := l.Items()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list items")
		}
		return c.JSON(fiber.Map{"error": false, "data": items})
	}
}

// GET /api/items/history/:code
func ItemHistoryHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		history, err := l.History(c.Params("code"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load item history")
		}
		return c.JSON(fiber.Map{"error": false, "data": history})
	}
}

type CreateItemRequest struct {
	Name     string `json:"name" validate:"required"`
	ShopName string `json:"shopName" validate:"required"`
	Stock    int64  `json:"stock" validate:"gte=0"`
}

// POST /api/items
func CreateItemHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		item, err := l.CreateItem(body.Name, body.ShopName, body.Stock)
		if err != nil {
			return ledgerError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"error": false, "data": item})
	}
}

type UpdateItemRequest struct {
	Name     string `json:"name" validate:"required"`
	ShopName string `json:"shopName" validate:"required"`
	Stock    int64  `json:"stock" validate:"gte=0"`
}

// PUT /api/items/:id
// Administrative escape hatch: overwrites the stored stock without a
// ledger entry, so the change is audit-logged.
func UpdateItemHandler(l *ledger.Ledger, rec *audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid item id")
		}

		var body UpdateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		item, err := l.DirectUpdateItem(uint(id), body.Name, body.ShopName, body.Stock)
		if err != nil {
			return ledgerError(err)
		}

		userID, userName := currentUser(c)
		rec.Write(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "item",
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: "direct item update bypassing the ledger",
			After:       item,
		})

		return c.JSON(fiber.Map{"error": false, "message": "Item updated", "data": item})
	}
}

// DELETE /api/items/:id
func DeleteItemHandler(l *ledger.Ledger, rec *audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid item id")
		}

		item, err := l.DeleteItem(uint(id))
		if err != nil {
			return ledgerError(err)
		}

		userID, userName := currentUser(c)
		rec.Write(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "item",
			EntityID:    item.ID,
			Action:      models.AuditActionDelete,
			Description: "item deleted, history rows kept",
			Before:      item,
		})

		return c.JSON(fiber.Map{"error": false, "message": "Item deleted"})
	}
}
