// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/devanagari-foods/storefront/internal/domain/admin"
	"github.com/devanagari-foods/storefront/internal/domain/cart"
	"github.com/devanagari-foods/storefront/internal/domain/order"
	"github.com/devanagari-foods/storefront/internal/domain/product"
	"github.com/devanagari-foods/storefront/internal/domain/user"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{db: db}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Dependency order: referenced tables first
	models := []interface{}{
		&user.User{},
		&user.Address{},
		&product.Product{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
		&admin.Action{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes beyond the model tags
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// One cart row per (user, product); AddItem's race fallback
		// depends on this constraint existing
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_user_product ON cart_items(user_id, product_id)",

		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_name_weight ON products(name, weight)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_created_at ON cart_items(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_refund_id ON orders(refund_id) WHERE refund_id IS NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_orders_refunded_at ON orders(refunded_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_user_addresses_user_default ON user_addresses(user_id, is_default)",
		"CREATE INDEX IF NOT EXISTS idx_admin_actions_admin_created ON admin_actions(admin_id, created_at DESC)",
	}

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
		}
	}

	log.Println("✅ Index creation completed")
	return nil
}

// SeedSampleProducts inserts the storefront's catalog when it is empty.
// Development convenience; production catalogs are managed directly in
// the row store.
func (m *Migration) SeedSampleProducts() error {
	samples := []product.Product{
		{
			Name:        "Devanagari Health Mix",
			Description: "A premium blend of 21 natural grains, millets, and pulses",
			Price:       19900,
			Weight:      200,
			Stock:       100,
		},
		{
			Name:        "Devanagari Health Mix",
			Description: "A premium blend of 21 natural grains, millets, and pulses",
			Price:       29900,
			Weight:      450,
			Stock:       100,
		},
		{
			Name:        "Devanagari Health Mix",
			Description: "A premium blend of 21 natural grains, millets, and pulses",
			Price:       49900,
			Weight:      900,
			Stock:       100,
		},
	}

	for i := range samples {
		p := samples[i]
		var existing product.Product
		err := m.db.Where("name = ? AND weight = ?", p.Name, p.Weight).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check sample product: %w", err)
		}
		if err := m.db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to seed sample product: %w", err)
		}
		log.Printf("Seeded sample product: %s %.0fg", p.Name, p.Weight)
	}
	return nil
}
