// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"log"

	"creomart/internal/config"
	"creomart/internal/handlers"
	"creomart/internal/middleware"
	"creomart/internal/models"
	"creomart/internal/repositories"
	"creomart/internal/services/funds"
	"creomart/internal/services/gateway"
	"creomart/internal/services/ledger"
	"creomart/internal/services/limits"
	"creomart/internal/services/paymethod"
	"creomart/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize repositories
	walletRepo := repositories.NewWalletRepository(db)
	methodRepo := repositories.NewPaymentMethodRepository(db)
	limitRepo := repositories.NewWalletLimitRepository(db)

	// Initialize processor gateway
	processor := gateway.NewStripeProcessor(config.LoadStripe())

	// Initialize services in dependency order
	walletService := wallet.NewService(walletRepo, repositories.CacheService)
	ledgerService := ledger.NewService(walletRepo, repositories.CacheService, &wallet.NoopMetricsCollector{})
	limitService := limits.NewService(walletRepo, limitRepo)

	feePercent, err := decimal.NewFromString(config.GetEnv("WITHDRAWAL_FEE_PERCENT", "0.01"))
	if err != nil {
		log.Fatalf("Invalid WITHDRAWAL_FEE_PERCENT: %v", err)
	}
	fundsService := funds.NewService(
		walletService,
		ledgerService,
		limitService,
		processor,
		methodRepo,
		funds.Config{WithdrawalFeePercent: feePercent},
		&wallet.NoopMetricsCollector{},
	)
	methodService := paymethod.NewService(methodRepo)

	// Initialize handlers
	walletHandler := handlers.NewWalletHandler(walletService, fundsService, ledgerService)
	methodHandler := handlers.NewPaymentMethodHandler(methodService)
	adminHandler := handlers.NewAdminHandler(walletService, limitService, ledgerService)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Creomart API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	api := app.Group("/api")
	api.Get("/health", handlers.HealthCheck)

	// Protected routes with auth middleware
	authMiddleware := middleware.NewAuthMiddleware()
	protected := api.Use(authMiddleware.Handler)

	setupWalletRoutes(protected, walletHandler, methodHandler)
	setupAdminRoutes(app, authMiddleware, adminHandler)
}

func setupWalletRoutes(router fiber.Router, walletHandler *handlers.WalletHandler, methodHandler *handlers.PaymentMethodHandler) {
	w := router.Group("/wallet")
	w.Get("/", middleware.HasPermission(models.PermissionWalletRead), walletHandler.GetWallet)
	w.Post("/deposit", middleware.HasPermission(models.PermissionWalletWrite), walletHandler.AddFunds)
	w.Post("/deposit/confirm", middleware.HasPermission(models.PermissionWalletWrite), walletHandler.ConfirmDeposit)
	w.Post("/withdraw", middleware.HasPermission(models.PermissionWalletWrite), walletHandler.Withdraw)

	router.Get("/transactions", middleware.HasPermission(models.PermissionTransactionRead), walletHandler.GetTransactions)

	pm := router.Group("/payment-methods")
	pm.Get("/", middleware.HasPermission(models.PermissionWalletRead), methodHandler.List)
	pm.Post("/", middleware.HasPermission(models.PermissionWalletWrite), methodHandler.Add)
	pm.Put("/:id/primary", middleware.HasPermission(models.PermissionWalletWrite), methodHandler.SetPrimary)
	pm.Delete("/:id", middleware.HasPermission(models.PermissionWalletWrite), methodHandler.Deactivate)
}

func setupAdminRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware, adminHandler *handlers.AdminHandler) {
	admin := app.Group("/api/admin", authMiddleware.Handler, middleware.AdminAuthMiddleware)

	admin.Post("/wallets/:userId/freeze", middleware.HasPermission(models.PermissionWalletFreeze), adminHandler.FreezeWallet)
	admin.Post("/wallets/:userId/unfreeze", middleware.HasPermission(models.PermissionWalletFreeze), adminHandler.UnfreezeWallet)
	admin.Put("/wallets/:userId/limits", adminHandler.SetLimit)
	admin.Post("/transactions/:id/dispute", adminHandler.DisputeTransaction)
}
