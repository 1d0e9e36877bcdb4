package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/discount"
	"github.com/your-org/storefront-backend/internal/domain/gallery"
	"github.com/your-org/storefront-backend/internal/domain/gamification"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	// Dependency order: referenced tables first
	models := []interface{}{
		&user.User{},
		&user.Address{},

		&product.Category{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductVariant{},
		&product.ProductReview{},

		&inventory.InventoryRecord{},
		&inventory.InventoryMovement{},

		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},

		&checkout.AbandonedCheckout{},

		&discount.DiscountCode{},

		&gamification.XPEvent{},
		&gamification.Badge{},
		&gamification.UserBadge{},

		&gallery.GalleryItem{},
		&gallery.GalleryVote{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// performanceIndexes are raw-SQL indexes beyond what the gorm tags declare.
var performanceIndexes = []string{
	// User indexes
	"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
	"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

	// Product indexes
	"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
	"CREATE INDEX IF NOT EXISTS idx_products_slug ON products(slug)",
	"CREATE INDEX IF NOT EXISTS idx_products_printful_id ON products(printful_product_id)",
	"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

	// Product variant indexes
	"CREATE INDEX IF NOT EXISTS idx_product_variants_product_active ON product_variants(product_id, is_active)",
	"CREATE INDEX IF NOT EXISTS idx_product_variants_sku ON product_variants(sku)",

	// Product image indexes
	"CREATE INDEX IF NOT EXISTS idx_product_images_product_sort ON product_images(product_id, sort_order)",

	// Cart indexes
	"CREATE INDEX IF NOT EXISTS idx_cart_items_user_variant ON cart_items(user_id, variant_id)",

	// Order indexes
	"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
	"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_orders_guest_email ON orders(guest_email)",
	"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

	// Order items indexes
	"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
	"CREATE INDEX IF NOT EXISTS idx_order_items_variant ON order_items(product_variant_id)",

	// Order status history indexes
	"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",

	// Checkout snapshot indexes
	"CREATE INDEX IF NOT EXISTS idx_abandoned_checkouts_created_at ON abandoned_checkouts(created_at DESC)",

	// Address indexes
	"CREATE INDEX IF NOT EXISTS idx_addresses_user_type ON addresses(user_id, type)",
	"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",

	// Review indexes
	"CREATE INDEX IF NOT EXISTS idx_product_reviews_product_approved ON product_reviews(product_id, is_approved)",
	"CREATE INDEX IF NOT EXISTS idx_product_reviews_user ON product_reviews(user_id)",

	// Gamification indexes
	"CREATE INDEX IF NOT EXISTS idx_xp_events_user_created ON xp_events(user_id, created_at DESC)",

	// Gallery indexes
	"CREATE INDEX IF NOT EXISTS idx_gallery_votes_item_created ON gallery_votes(gallery_item_id, created_at DESC)",
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	for _, indexSQL := range performanceIndexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("Failed to create index")
		}
	}

	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	if err := m.seedDefaultCategory(); err != nil {
		return fmt.Errorf("failed to seed default category: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	return nil
}

// seedDefaultCategory creates the category synced products land in.
func (m *Migration) seedDefaultCategory() error {
	var existing product.Category
	err := m.db.Where("slug = ?", "shop").First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	category := product.Category{
		Name:     "Shop",
		Slug:     "shop",
		IsActive: true,
	}
	return m.db.Create(&category).Error
}

func (m *Migration) seedAdminUser() error {
	adminEmail := "admin@example.com"

	var existing user.User
	err := m.db.Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:         adminEmail,
		Password:      string(hashedPassword),
		FirstName:     "Admin",
		LastName:      "User",
		IsActive:      true,
		IsAdmin:       true,
		EmailVerified: true,
	}

	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	m.logger.WithField("email", adminEmail).Warn("Created default admin user, change the password")
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	m.logger.Warn("Dropping all database tables")

	// Reverse dependency order
	tables := []string{
		"gallery_votes",
		"gallery_items",
		"user_badges",
		"badges",
		"xp_events",
		"discount_codes",
		"abandoned_checkouts",
		"order_status_history",
		"order_items",
		"orders",
		"cart_items",
		"inventory_movements",
		"inventory_records",
		"product_reviews",
		"product_variants",
		"product_images",
		"products",
		"categories",
		"addresses",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			m.logger.WithError(err).WithField("table", table).Warn("Failed to drop table")
		}
	}

	return nil
}
