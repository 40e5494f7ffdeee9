package items

import (
	"fmt"
	"time"

	"eoq-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/items/report
func InventoryReportHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := l.InventoryReport()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build inventory report")
		}
		return c.JSON(fiber.Map{"error": false, "data": rows})
	}
}

// GET /api/items/report/export
// Same data as /report, rendered as a downloadable workbook.
func ExportInventoryReportHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := l.InventoryReport()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build inventory report")
		}

		f := excelize.NewFile()
		defer f.Close()

		const sheet = "Inventory"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Code", "Name", "Shop", "Stock", "Total In", "Total Out"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for i, row := range rows {
			values := []interface{}{row.Code, row.Name, row.ShopName, row.Stock, row.TotalIn, row.TotalOut}
			for j, v := range values {
				cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not render workbook")
		}

		filename := fmt.Sprintf("inventory-report-%s.xlsx", time.Now().Format("2006-01-02"))
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())
	}
}
