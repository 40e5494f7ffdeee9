package sales

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

type SaleRequest struct {
	SalesNo        string          `json:"salesNo"` // empty: auto-generate PJL-###
	Date           string          `json:"date" validate:"required"`
	RemainingMoney decimal.Decimal `json:"remainingMoney"`
	Expense        decimal.Decimal `json:"expense"`
	TotalAll       decimal.Decimal `json:"totalAll"`
	Serba35        decimal.Decimal `json:"serba35"`
	Serba75        decimal.Decimal `json:"serba75"`
}

// createSale assigns the next PJL number inside the transaction; the
// unique index on sales_no settles races, one retry picks up the number
// the winner advanced past.
func createSale(db *gorm.DB, body SaleRequest) (*models.Sale, error) {
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return nil, errors.New("date must be 'YYYY-MM-DD'")
	}

	var sale models.Sale
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		lastErr = db.Transaction(func(tx *gorm.DB) error {
			salesNo := body.SalesNo
			if salesNo == "" {
				var last models.Sale
				err := tx.Order("created_at DESC, id DESC").First(&last).Error
				switch {
				case errors.Is(err, gorm.ErrRecordNotFound):
					salesNo = ledger.NextCode("PJL", "")
				case err != nil:
					return err
				default:
					salesNo = ledger.NextCode("PJL", last.SalesNo)
				}
			}

			sale = models.Sale{
				SalesNo:        salesNo,
				Date:           date,
				RemainingMoney: body.RemainingMoney,
				Expense:        body.Expense,
				TotalAll:       body.TotalAll,
				Serba35:        body.Serba35,
				Serba75:        body.Serba75,
			}
			return tx.Create(&sale).Error
		})
		if lastErr == nil {
			return &sale, nil
		}
		if !errors.Is(lastErr, gorm.ErrDuplicatedKey) || body.SalesNo != "" {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// GET /api/sales
func ListSalesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sales []models.Sale
		if err := db.Order("created_at DESC, id DESC").Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sales")
		}
		return c.JSON(fiber.Map{"error": false, "data": sales})
	}
}

// GET /api/sales/:id
func GetSaleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid sale id")
		}

		var sale models.Sale
		if err := db.First(&sale, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sale not found")
		}
		return c.JSON(fiber.Map{"error": false, "data": sale})
	}
}

// POST /api/sales
func CreateSaleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		sale, err := createSale(db, body)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"error": false, "data": sale})
	}
}

// PUT /api/sales/:id
func UpdateSaleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid sale id")
		}

		var body SaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		date, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Date must be 'YYYY-MM-DD'")
		}

		var sale models.Sale
		if err := db.First(&sale, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sale not found")
		}

		if body.SalesNo != "" {
			sale.SalesNo = body.SalesNo
		}
		sale.Date = date
		sale.RemainingMoney = body.RemainingMoney
		sale.Expense = body.Expense
		sale.TotalAll = body.TotalAll
		sale.Serba35 = body.Serba35
		sale.Serba75 = body.Serba75

		if err := db.Save(&sale).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Sales number already in use")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update sale")
		}
		return c.JSON(fiber.Map{"error": false, "message": "Sale updated", "data": sale})
	}
}

// DELETE /api/sales/:id
func DeleteSaleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid sale id")
		}

		res := db.Delete(&models.Sale{}, id)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete sale")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Sale not found")
		}
		return c.JSON(fiber.Map{"error": false, "message": "Sale deleted"})
	}
}

type uploadRowResult struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// POST /api/sales/upload
// Accepts an array of rows; each row succeeds or fails on its own.
func UploadSalesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []SaleRequest
		if err := c.BodyParser(&rows); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body must be a JSON array")
		}

		results := make([]uploadRowResult, 0, len(rows))
		for _, row := range rows {
			if err := validate.Struct(row); err != nil {
				results = append(results, uploadRowResult{Error: true, Message: err.Error()})
				continue
			}
			sale, err := createSale(db, row)
			if err != nil {
				results = append(results, uploadRowResult{Error: true, Message: err.Error()})
				continue
			}
			results = append(results, uploadRowResult{Message: "Created", Data: sale})
		}

		return c.JSON(fiber.Map{"error": false, "message": "Sales upload finished", "data": results})
	}
}
