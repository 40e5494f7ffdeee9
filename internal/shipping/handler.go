package shipping

import (
	"errors"
	"time"

	"eoq-backend/internal/ledger"
	"eoq-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

type ShippingRequest struct {
	ShippingNo string          `json:"shippingNo"` // empty: auto-generate SHP-###
	Date       string          `json:"date"`       // empty: today
	Name       string          `json:"name" validate:"required"`
	Price      decimal.Decimal `json:"price"`
}

func createShipping(db *gorm.DB, body ShippingRequest) (*models.Shipping, error) {
	if body.Price.IsNegative() {
		return nil, errors.New("price cannot be negative")
	}

	date := time.Now().Truncate(24 * time.Hour)
	if body.Date != "" {
		parsed, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return nil, errors.New("date must be 'YYYY-MM-DD'")
		}
		date = parsed
	}

	var shipping models.Shipping
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		lastErr = db.Transaction(func(tx *gorm.DB) error {
			shippingNo := body.ShippingNo
			if shippingNo == "" {
				var last models.Shipping
				err := tx.Order("created_at DESC, id DESC").First(&last).Error
				switch {
				case errors.Is(err, gorm.ErrRecordNotFound):
					shippingNo = ledger.NextCode("SHP", "")
				case err != nil:
					return err
				default:
					shippingNo = ledger.NextCode("SHP", last.ShippingNo)
				}
			}

			shipping = models.Shipping{
				ShippingNo: shippingNo,
				Date:       date,
				Name:       body.Name,
				Price:      body.Price,
			}
			return tx.Create(&shipping).Error
		})
		if lastErr == nil {
			return &shipping, nil
		}
		if !errors.Is(lastErr, gorm.ErrDuplicatedKey) || body.ShippingNo != "" {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// GET /api/shipping
func ListShippingsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var shippings []models.Shipping
		if err := db.Order("created_at DESC, id DESC").Find(&shippings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list shippings")
		}
		return c.JSON(fiber.Map{"error": false, "data": shippings})
	}
}

// GET /api/shipping/:id
func GetShippingHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid shipping id")
		}

		var shipping models.Shipping
		if err := db.First(&shipping, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Shipping record not found")
		}
		return c.JSON(fiber.Map{"error": false, "data": shipping})
	}
}

// POST /api/shipping
func CreateShippingHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ShippingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		shipping, err := createShipping(db, body)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"error": false, "data": shipping})
	}
}

// PUT /api/shipping/:id
func UpdateShippingHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid shipping id")
		}

		var body ShippingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.Price.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "price cannot be negative")
		}

		var shipping models.Shipping
		if err := db.First(&shipping, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Shipping record not found")
		}

		if body.ShippingNo != "" {
			shipping.ShippingNo = body.ShippingNo
		}
		if body.Date != "" {
			date, derr := time.Parse("2006-01-02", body.Date)
			if derr != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Date must be 'YYYY-MM-DD'")
			}
			shipping.Date = date
		}
		shipping.Name = body.Name
		shipping.Price = body.Price

		if err := db.Save(&shipping).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Shipping number already in use")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update shipping record")
		}
		return c.JSON(fiber.Map{"error": false, "message": "Shipping record updated", "data": shipping})
	}
}

// DELETE /api/shipping/:id
func DeleteShippingHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid shipping id")
		}

		res := db.Delete(&models.Shipping{}, id)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete shipping record")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Shipping record not found")
		}
		return c.JSON(fiber.Map{"error": false, "message": "Shipping record deleted"})
	}
}

type uploadRowResult struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// POST /api/shipping/upload
func UploadShippingsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []ShippingRequest
		if err := c.BodyParser(&rows); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body must be a JSON array")
		}

		results := make([]uploadRowResult, 0, len(rows))
		for _, row := range rows {
			if row.Name == "" || row.Price.IsZero() {
				results = append(results, uploadRowResult{Error: true, Message: "Incomplete row: name and price are required"})
				continue
			}
			shipping, err := createShipping(db, row)
			if err != nil {
				results = append(results, uploadRowResult{Error: true, Message: err.Error()})
				continue
			}
			results = append(results, uploadRowResult{Message: "Created", Data: shipping})
		}

		return c.JSON(fiber.Map{"error": false, "message": "Shipping upload finished", "data": results})
	}
}
