// Command seed provisions a demo creator with a wallet, withdrawal
// limits and a payment method for local development.
package main

import (
	"context"
	"log"
	"os"

	"creomart/internal/config"
	"creomart/internal/models"
	"creomart/internal/repositories"

	"github.com/shopspring/decimal"
)

func main() {
	config.LoadEnv()

	email := os.Getenv("SEED_EMAIL")
	if email == "" {
		email = "creator@example.com"
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("⚠️ Failed to close PostgreSQL connection: %v", err)
			}
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("⚠️ Failed to close Redis connection: %v", err)
			}
		}
	}()

	ctx := context.Background()

	var user models.User
	result := repositories.DB.Where("email = ?", email).First(&user)
	if result.Error != nil {
		user = models.User{
			Email:  email,
			Name:   "Demo Creator",
			Role:   "creator",
			Status: "active",
		}
		if err := repositories.DB.Create(&user).Error; err != nil {
			log.Fatal("Failed to create demo user:", err)
		}
		log.Printf("Created demo user %s (id %d)", email, user.ID)
	} else {
		log.Printf("Demo user %s already exists (id %d)", email, user.ID)
	}

	walletRepo := repositories.NewWalletRepository(repositories.DB)
	wallet, err := walletRepo.GetOrCreateWallet(ctx, user.ID)
	if err != nil {
		log.Fatal("Failed to create wallet:", err)
	}
	log.Printf("Wallet %d ready (balance %s)", wallet.ID, wallet.Balance.StringFixed(2))

	limitRepo := repositories.NewWalletLimitRepository(repositories.DB)
	seedLimits := map[string]decimal.Decimal{
		models.LimitDailyWithdrawal:   decimal.NewFromInt(500),
		models.LimitMonthlyWithdrawal: decimal.NewFromInt(5000),
		models.LimitTransactionAmount: decimal.NewFromInt(250),
	}
	for limitType, amount := range seedLimits {
		limit := &models.WalletLimit{
			UserID:    user.ID,
			LimitType: limitType,
			Amount:    amount,
			IsActive:  true,
		}
		if err := limitRepo.Upsert(ctx, limit); err != nil {
			log.Fatalf("Failed to seed %s limit: %v", limitType, err)
		}
	}
	log.Printf("Seeded %d limits", len(seedLimits))

	methodRepo := repositories.NewPaymentMethodRepository(repositories.DB)
	existing, err := methodRepo.ListForUser(ctx, user.ID)
	if err != nil {
		log.Fatal("Failed to list payment methods:", err)
	}
	if len(existing) == 0 {
		pm := &models.PaymentMethod{
			UserID:      user.ID,
			MethodType:  models.MethodBankAccount,
			DisplayName: "Demo Checking ••••4242",
			Details: models.NewJSON(map[string]interface{}{
				"bank_name": "Demo Bank",
				"last4":     "4242",
			}),
			IsPrimary:       true,
			IsActive:        true,
			StripeAccountID: "acct_demo",
		}
		if err := methodRepo.Create(ctx, pm); err != nil {
			log.Fatal("Failed to create payment method:", err)
		}
		log.Printf("Created demo payment method %d", pm.ID)
	}

	log.Println("✅ Seed complete")
}
