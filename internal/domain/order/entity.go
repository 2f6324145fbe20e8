package order

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devanagari-foods/storefront/internal/domain/product"
	"github.com/devanagari-foods/storefront/internal/domain/user"
)

// Status represents the order fulfillment status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus represents the payment status
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order represents the order entity
type Order struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Total  int64     `gorm:"not null" json:"total"` // paise
	Status Status    `gorm:"size:20;not null;default:'pending'" json:"status"`

	// Gateway fields from the success callback
	PaymentID        string        `gorm:"size:100;index" json:"payment_id,omitempty"`
	PaymentOrderID   string        `gorm:"size:100" json:"payment_order_id,omitempty"`
	PaymentSignature string        `gorm:"size:255" json:"payment_signature,omitempty"`
	PaymentStatus    PaymentStatus `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	PaymentMethod    string        `gorm:"size:50;default:'razorpay'" json:"payment_method"`
	Currency         string        `gorm:"size:3;default:'INR'" json:"currency"`

	// Refund fields are written outside this system (gateway dashboard);
	// the admin view only reads them.
	RefundID     *string    `gorm:"size:100;index" json:"refund_id,omitempty"`
	RefundAmount int64      `gorm:"default:0" json:"refund_amount"`
	RefundReason string     `gorm:"size:500" json:"refund_reason,omitempty"`
	RefundStatus string     `gorm:"size:20" json:"refund_status,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"order_items,omitempty"`
	User  *user.User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// OrderItem is a price snapshot of one cart line at order time,
// decoupled from later product price changes.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"` // per unit, paise
	CreatedAt time.Time `json:"created_at"`

	Product *product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// BeforeCreate assigns an id when the caller did not
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// BeforeCreate assigns an id when the caller did not
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// FormattedTotal returns the total in rupees.
func (o *Order) FormattedTotal() float64 {
	return float64(o.Total) / 100
}

// IsRefunded reports whether the gateway recorded a refund for this order.
func (o *Order) IsRefunded() bool {
	return o.RefundID != nil
}
