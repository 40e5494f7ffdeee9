package items

import (
	"encoding/json"
	"time"

	"eoq-backend/internal/audit"
	"eoq-backend/internal/ledger"
	"eoq-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StockEntryRequest struct {
	ItemName string `json:"itemName" validate:"required"`
	ShopName string `json:"shopName" validate:"required"`
	Date     string `json:"date" validate:"required"` // "2024-01-31"
	Qty      int64  `json:"qty" validate:"gt=0"`
}

type StockEntryResult struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Type    string `json:"type,omitempty"`
	Created bool   `json:"created,omitempty"`
}

// parseEntries accepts either one JSON object or an array of them, as the
// bulk upload contract requires.
func parseEntries(body []byte) ([]StockEntryRequest, error) {
	var list []StockEntryRequest
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var single StockEntryRequest
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, err
	}
	return []StockEntryRequest{single}, nil
}

func parseBusinessDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// POST /api/items/upload/in
// Each entry is processed independently; one failing row does not abort
// the batch.
func UploadIncomingHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := parseEntries(c.Body())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		results := make([]StockEntryResult, 0, len(entries))
		for _, entry := range entries {
			if err := validate.Struct(entry); err != nil {
				results = append(results, StockEntryResult{Error: true, Message: "Incomplete entry: " + err.Error()})
				continue
			}
			date, err := parseBusinessDate(entry.Date)
			if err != nil {
				results = append(results, StockEntryResult{Error: true, Message: "Date must be 'YYYY-MM-DD'"})
				continue
			}

			res, err := l.RecordIncoming(entry.ItemName, entry.ShopName, date, entry.Qty)
			if err != nil {
				results = append(results, StockEntryResult{Error: true, Message: err.Error()})
				continue
			}
			msg := "Stock increased"
			if res.Created {
				msg = "New item registered"
			}
			results = append(results, StockEntryResult{Message: msg, Code: res.Code, Type: "in", Created: res.Created})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"error":   false,
			"message": "Incoming stock upload finished",
			"data":    results,
		})
	}
}

// POST /api/items/upload/out
func UploadOutgoingHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := parseEntries(c.Body())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		results := make([]StockEntryResult, 0, len(entries))
		for _, entry := range entries {
			if err := validate.Struct(entry); err != nil {
				results = append(results, StockEntryResult{Error: true, Message: "Incomplete entry: " + err.Error()})
				continue
			}
			date, err := parseBusinessDate(entry.Date)
			if err != nil {
				results = append(results, StockEntryResult{Error: true, Message: "Date must be 'YYYY-MM-DD'"})
				continue
			}

			code, err := l.RecordOutgoing(entry.ItemName, entry.ShopName, date, entry.Qty)
			if err != nil {
				results = append(results, StockEntryResult{Error: true, Message: err.Error()})
				continue
			}
			results = append(results, StockEntryResult{Message: "Stock reduced", Code: code, Type: "out"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"error":   false,
			"message": "Outgoing stock upload finished",
			"data":    results,
		})
	}
}

type EditTransactionRequest struct {
	Qty      int64  `json:"qty" validate:"gt=0"`
	Date     string `json:"date"`
	ShopName string `json:"shopName"`
	Type     string `json:"type" validate:"omitempty,oneof=in out"`
}

// PUT /api/items/transaction/:id
func EditTransactionHandler(l *ledger.Ledger, rec *audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid transaction id")
		}

		var body EditTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		edit := ledger.TransactionEdit{
			Qty:      body.Qty,
			ShopName: body.ShopName,
			Type:     models.TransactionType(body.Type),
		}
		if body.Date != "" {
			date, derr := parseBusinessDate(body.Date)
			if derr != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Date must be 'YYYY-MM-DD'")
			}
			edit.Date = date
		}

		if err := l.EditTransaction(uint(id), edit); err != nil {
			return ledgerError(err)
		}

		userID, userName := currentUser(c)
		rec.Write(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "stock_transaction",
			EntityID:    uint(id),
			Action:      models.AuditActionUpdate,
			Description: "transaction edited, balance adjusted by delta",
			After:       body,
		})

		return c.JSON(fiber.Map{"error": false, "message": "Transaction updated"})
	}
}
