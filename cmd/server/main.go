package main

import (
	"strings"
	"time"

	"eoq-backend/internal/admin"
	"eoq-backend/internal/audit"
	"eoq-backend/internal/auth"
	"eoq-backend/internal/config"
	"eoq-backend/internal/dashboard"
	"eoq-backend/internal/database"
	"eoq-backend/internal/eoq"
	"eoq-backend/internal/items"
	"eoq-backend/internal/ledger"
	"eoq-backend/internal/logging"
	"eoq-backend/internal/models"
	"eoq-backend/internal/sales"
	"eoq-backend/internal/shipping"
	"eoq-backend/internal/upload"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func main() {
	cfg := config.Load()
	log := logging.New()

	db, err := database.Open(cfg)
	if err != nil {
		log.WithError(err).Fatal("could not connect to database")
	}

	if err := auth.EnsureDefaultAdmin(db, log); err != nil {
		log.WithError(err).Fatal("could not seed default admin")
	}

	ledgerSvc := ledger.New(db, log)
	auditRec := audit.NewRecorder(db, log)

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error":   true,
					"message": e.Message,
				})
			}
			log.WithError(err).Error("unexpected handler error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   true,
				"message": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	// global limiter, same window as the original deployment
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 10 * time.Minute,
	}))

	app.Static("/uploads", cfg.UploadDir)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "EOQ Backend Running", "status": "OK"})
	})

	api := app.Group("/api")

	loginLimiter := limiter.New(limiter.Config{Max: 10, Expiration: 5 * time.Minute})
	api.Post("/auth/register", auth.RegisterHandler(db, cfg))
	api.Post("/auth/login", loginLimiter, auth.LoginHandler(db, cfg))

	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))
	protected.Post("/auth/change-password", auth.ChangePasswordHandler(db))

	// admin-only user management
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Post("/create-user", admin.CreateUserHandler(db))
	adminRoutes.Get("/users", admin.ListUsersHandler(db))
	adminRoutes.Post("/reset-password", admin.ResetPasswordHandler(db, auditRec))

	staff := auth.RequireRole(models.RoleAdmin, models.RoleStaff)

	// stock ledger & item registry
	itemRoutes := protected.Group("/items")
	itemRoutes.Use(limiter.New(limiter.Config{Max: 300, Expiration: 15 * time.Minute}))
	itemRoutes.Get("/", staff, items.ListItemsHandler(ledgerSvc))
	itemRoutes.Get("/report", staff, items.InventoryReportHandler(ledgerSvc))
	itemRoutes.Get("/report/export", staff, items.ExportInventoryReportHandler(ledgerSvc))
	itemRoutes.Get("/history/:code", staff, items.ItemHistoryHandler(ledgerSvc))
	itemRoutes.Post("/upload/in", staff, items.UploadIncomingHandler(ledgerSvc))
	itemRoutes.Post("/upload/out", staff, items.UploadOutgoingHandler(ledgerSvc))
	itemRoutes.Put("/transaction/:id", staff, items.EditTransactionHandler(ledgerSvc, auditRec))
	itemRoutes.Post("/", staff, items.CreateItemHandler(ledgerSvc))
	itemRoutes.Put("/:id", staff, items.UpdateItemHandler(ledgerSvc, auditRec))
	itemRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin), items.DeleteItemHandler(ledgerSvc, auditRec))

	// sales records
	protected.Get("/sales", staff, sales.ListSalesHandler(db))
	protected.Post("/sales", staff, sales.CreateSaleHandler(db))
	protected.Post("/sales/upload", staff, sales.UploadSalesHandler(db))
	protected.Get("/sales/:id", staff, sales.GetSaleHandler(db))
	protected.Put("/sales/:id", staff, sales.UpdateSaleHandler(db))
	protected.Delete("/sales/:id", auth.RequireRole(models.RoleAdmin), sales.DeleteSaleHandler(db))

	// shipping records
	protected.Get("/shipping", staff, shipping.ListShippingsHandler(db))
	protected.Post("/shipping", staff, shipping.CreateShippingHandler(db))
	protected.Post("/shipping/upload", staff, shipping.UploadShippingsHandler(db))
	protected.Get("/shipping/:id", staff, shipping.GetShippingHandler(db))
	protected.Put("/shipping/:id", staff, shipping.UpdateShippingHandler(db))
	protected.Delete("/shipping/:id", auth.RequireRole(models.RoleAdmin), shipping.DeleteShippingHandler(db))

	// EOQ
	protected.Get("/eoq/parameters", staff, eoq.ParametersHandler(ledgerSvc))
	protected.Post("/eoq/calculate", staff, eoq.CalculateHandler())

	// dashboard
	protected.Get("/dashboard/summary", staff, dashboard.SummaryHandler(db))

	// profile picture upload
	protected.Post("/upload/profile", upload.ProfilePictureHandler(db, cfg, log))

	// audit trail
	protected.Get("/audit-logs", auth.RequireRole(models.RoleAdmin), audit.ListAuditLogsHandler(db))

	log.WithField("port", cfg.HTTPPort).Info("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
