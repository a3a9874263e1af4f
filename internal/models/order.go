package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a customer's placed purchase request. Contact fields and line
// items are snapshots taken at checkout time; only the status changes
// afterwards.
type Order struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	CustomerEmail string          `db:"customer_email" json:"customer_email"`
	CustomerPhone *string         `db:"customer_phone" json:"customer_phone,omitempty"`
	ShippingAddr  *string         `db:"shipping_address" json:"shipping_address,omitempty"`
	ShippingCity  *string         `db:"shipping_city" json:"shipping_city,omitempty"`
	ShippingState *string         `db:"shipping_state" json:"shipping_state,omitempty"`
	ShippingZip   *string         `db:"shipping_zip_code" json:"shipping_zip_code,omitempty"`
	ShippingCtry  *string         `db:"shipping_country" json:"shipping_country,omitempty"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status        OrderStatus     `db:"status" json:"status"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`

	Items []*OrderItem `db:"-" json:"items"`
}

// OrderItem is a line item snapshot. Name, image and prices are copied
// from the product and discount rows at order time and never recomputed.
type OrderItem struct {
	ID            int64               `db:"id" json:"id"`
	OrderID       string              `db:"order_id" json:"order_id"`
	ProductID     string              `db:"product_id" json:"product_id"`
	Name          string              `db:"name" json:"name"`
	Image         string              `db:"image" json:"image"`
	Quantity      int                 `db:"quantity" json:"quantity"`
	OriginalPrice decimal.Decimal     `db:"original_price" json:"original_price"`
	FinalPrice    decimal.Decimal     `db:"final_price" json:"final_price"`
	DiscountType  *string             `db:"discount_type" json:"discount_type,omitempty"`
	DiscountValue decimal.NullDecimal `db:"discount_value" json:"discount_value,omitempty"`
}

// Subtotal returns finalPrice * quantity for the line.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.FinalPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrder creates an order shell in the initial status. Items and the
// total are filled in by the order service before persisting.
func NewOrder(userID, customerName, customerEmail string) *Order {
	now := GetCurrentTime()

	return &Order{
		ID:            GenerateID("ord"),
		UserID:        userID,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		TotalAmount:   decimal.Zero,
		Status:        OrderStatusPendiente,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// HasShipping reports whether the order carries a shipping address
// snapshot; orders without one are fulfilled in person.
func (o *Order) HasShipping() bool {
	return o.ShippingAddr != nil && *o.ShippingAddr != ""
}
