package sales

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eoq-backend/internal/database"
	"eoq-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateSale_AutoNumbering(t *testing.T) {
	db := newTestDB(t)

	first, err := createSale(db, SaleRequest{Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "PJL-001", first.SalesNo)

	second, err := createSale(db, SaleRequest{Date: "2024-03-02"})
	require.NoError(t, err)
	assert.Equal(t, "PJL-002", second.SalesNo)
}

func TestCreateSale_ExplicitNumber(t *testing.T) {
	db := newTestDB(t)

	sale, err := createSale(db, SaleRequest{SalesNo: "PJL-100", Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "PJL-100", sale.SalesNo)

	// explicit duplicates are not retried, they fail outright
	_, err = createSale(db, SaleRequest{SalesNo: "PJL-100", Date: "2024-03-02"})
	assert.Error(t, err)

	// auto-numbering continues from the highest assigned number
	next, err := createSale(db, SaleRequest{Date: "2024-03-03"})
	require.NoError(t, err)
	assert.Equal(t, "PJL-101", next.SalesNo)
}

func TestCreateSale_BadDate(t *testing.T) {
	db := newTestDB(t)

	_, err := createSale(db, SaleRequest{Date: "03/01/2024"})
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSalesEndpoints(t *testing.T) {
	db := newTestDB(t)

	app := fiber.New()
	app.Get("/sales", ListSalesHandler(db))
	app.Post("/sales", CreateSaleHandler(db))
	app.Get("/sales/:id", GetSaleHandler(db))
	app.Delete("/sales/:id", DeleteSaleHandler(db))

	body := `{"date":"2024-03-01","totalAll":150000.50,"expense":20000}`
	req := httptest.NewRequest("POST", "/sales", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Error bool        `json:"error"`
		Data  models.Sale `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "PJL-001", created.Data.SalesNo)
	assert.True(t, created.Data.TotalAll.Equal(decimal.RequireFromString("150000.50")))

	resp, err = app.Test(httptest.NewRequest("GET", "/sales", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed struct {
		Data []models.Sale `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed.Data, 1)

	resp, err = app.Test(httptest.NewRequest("GET", fmt.Sprintf("/sales/%d", created.Data.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/sales/%d", created.Data.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/sales/%d", created.Data.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
