package cart

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devanagari-foods/storefront/internal/domain/product"
)

// CartItem represents one (user, product) line in the cart. The unique
// index is the backstop for the at-most-one-row-per-pair invariant;
// AddItem also pre-checks it defensively.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_product" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined for display; nil when the catalog row failed to resolve.
	Product *product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// BeforeCreate assigns an id when the caller did not
func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// View is the cart as displayed: the last-committed row set plus totals
// derived from it.
type View struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice int64      `json:"total_price"` // paise
}

// buildView derives totals from a fetched row set. Items whose joined
// product failed to resolve contribute zero to the price.
func buildView(items []CartItem) *View {
	view := &View{Items: items}
	for _, item := range items {
		view.TotalItems += item.Quantity
		if item.Product != nil {
			view.TotalPrice += item.Product.Price * int64(item.Quantity)
		}
	}
	return view
}
