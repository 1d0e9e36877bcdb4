package postgres

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

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

// Every raw index statement must reference a table and columns that the
// auto-migrated models actually produce, otherwise CreateIndexes silently
// warn-logs and the index never exists.
func TestPerformanceIndexes_MatchMigratedSchema(t *testing.T) {
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

	cache := &sync.Map{}
	tables := make(map[string]map[string]bool)
	for _, model := range models {
		s, err := schema.Parse(model, cache, schema.NamingStrategy{})
		require.NoError(t, err)

		columns := make(map[string]bool)
		for _, field := range s.Fields {
			if field.DBName != "" {
				columns[field.DBName] = true
			}
		}
		tables[s.Table] = columns
	}

	for _, stmt := range performanceIndexes {
		open := strings.Index(stmt, "(")
		closing := strings.LastIndex(stmt, ")")
		require.True(t, open > 0 && closing > open, "malformed statement: %s", stmt)

		head := stmt[:open]
		onIdx := strings.LastIndex(head, " ON ")
		require.True(t, onIdx > 0, "malformed statement: %s", stmt)
		table := strings.TrimSpace(head[onIdx+4:])

		columns, ok := tables[table]
		require.True(t, ok, "index %q targets unknown table %s", stmt, table)

		for _, part := range strings.Split(stmt[open+1:closing], ",") {
			column := strings.Fields(strings.TrimSpace(part))[0]
			assert.Truef(t, columns[column],
				"index %q references missing column %s.%s", stmt, table, column)
		}
	}
}
