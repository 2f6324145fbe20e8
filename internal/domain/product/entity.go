package product

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a catalog row. The row store owns products; the
// storefront only reads them, except for the legacy lazy-create path in
// FindOrCreate used by add-to-cart.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:255;index:idx_products_name_weight,unique" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       int64     `gorm:"not null" json:"price"` // Price in paise
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	Stock       int       `gorm:"default:0" json:"stock"`
	Weight      float64   `gorm:"index:idx_products_name_weight,unique" json:"weight"` // Weight in grams
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns an id when the caller did not
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// FormattedPrice returns the price in rupees.
func (p *Product) FormattedPrice() float64 {
	return float64(p.Price) / 100
}
