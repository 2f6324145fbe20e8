// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devanagari-foods/storefront/internal/config"
	"github.com/devanagari-foods/storefront/internal/domain/admin"
	"github.com/devanagari-foods/storefront/internal/domain/cart"
	"github.com/devanagari-foods/storefront/internal/domain/checkout"
	"github.com/devanagari-foods/storefront/internal/domain/order"
	"github.com/devanagari-foods/storefront/internal/domain/product"
	"github.com/devanagari-foods/storefront/internal/domain/user"
	"github.com/devanagari-foods/storefront/internal/gateway/promo"
	"github.com/devanagari-foods/storefront/internal/gateway/razorpay"
	"github.com/devanagari-foods/storefront/internal/identity"
	"github.com/devanagari-foods/storefront/internal/infrastructure/database/postgres"
	"github.com/devanagari-foods/storefront/internal/infrastructure/database/redis"
	httpserver "github.com/devanagari-foods/storefront/internal/interfaces/http"
	"github.com/devanagari-foods/storefront/internal/interfaces/http/routes"
	"github.com/devanagari-foods/storefront/internal/pkg/auth"
	"github.com/devanagari-foods/storefront/internal/pkg/email"
	"github.com/devanagari-foods/storefront/internal/pkg/pdf"
	"github.com/devanagari-foods/storefront/internal/pkg/storage"
	"github.com/devanagari-foods/storefront/internal/rowstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	logger := newLogger(cfg)

	// Connect to the row store
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB())

	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		log.Printf("Warning: Index creation failed: %v", err)
	}

	if cfg.IsDevelopment() {
		if err := migration.SeedSampleProducts(); err != nil {
			log.Printf("Warning: Sample product seeding failed: %v", err)
		}
	}

	// Wire the services
	store := rowstore.NewClient(db.GetDB())

	users := user.NewService(store)
	addresses := user.NewAddressService(store)
	products := product.NewService(store, logger)
	carts := cart.NewService(store, products, users, logger)
	orders := order.NewService(store)
	admins := admin.NewService(store, logger)

	provider := identity.NewProvider(cfg)
	sessions := identity.NewManager(provider, redisClient, users, logger, cfg.Identity.CacheTTL)

	gateway := razorpay.NewClient(cfg)
	promos := promo.NewClient(cfg.Promo.BaseURL)
	mailer := email.NewService(cfg, logger)
	checkouts := checkout.NewService(redisClient, carts, addresses, orders, gateway, promos, mailer, cfg, logger)

	deps := &routes.Dependencies{
		Verifier:  auth.NewVerifier(cfg),
		Provider:  provider,
		Sessions:  sessions,
		Users:     users,
		Addresses: addresses,
		Products:  products,
		Carts:     carts,
		Checkout:  checkouts,
		Orders:    orders,
		Admins:    admins,
		PDF:       pdf.NewService(cfg),
		Storage:   storage.NewLocal(cfg),
	}

	log.Println("✅ All systems operational!")

	server := httpserver.NewServer(cfg, db, redisClient, deps)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	log.Println("✅ Server shutdown completed")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
