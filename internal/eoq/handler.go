package eoq

import (
	"eoq-backend/internal/ledger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type CalculateRequest struct {
	D float64 `json:"d" validate:"gt=0"` // annual demand (units)
	S float64 `json:"s" validate:"gt=0"` // cost per order
	H float64 `json:"h" validate:"gt=0"` // holding cost per unit per year
}

// POST /api/eoq/calculate
func CalculateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CalculateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, ErrBadParameters.Error())
		}

		result, err := Calculate(body.D, body.S, body.H)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"error": false, "data": result})
	}
}

type ParameterRow struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	ShopName string `json:"shopName"`
	Stock    int64  `json:"stock"`
	Demand   int64  `json:"demand"` // total outgoing qty, the D input
}

// GET /api/eoq/parameters
// Demand per item is derived from the outgoing ledger; S and H are cost
// figures the caller supplies to /calculate.
func ParametersHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := l.Items()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list items")
		}
		demand, err := l.OutgoingDemand()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not aggregate demand")
		}

		rows := make([]ParameterRow, 0, len(items))
		for _, item := range items {
			rows = append(rows, ParameterRow{
				Code:     item.Code,
				Name:     item.Name,
				ShopName: item.ShopName,
				Stock:    item.Stock,
				Demand:   demand[item.Code],
			})
		}
		return c.JSON(fiber.Map{"error": false, "data": rows})
	}
}
