package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vigneshnair/bazaarly-backend/pkg/db/models"
	"github.com/vigneshnair/bazaarly-backend/pkg/enums"
)

// PlaceOrderRequest is the payload for a purchase. Delivery contact
// fields fall back to the customer's profile when omitted.
type PlaceOrderRequest struct {
	ProductID     uuid.UUID       `json:"product_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=cod upi"`
	Mobile        *string         `json:"mobile,omitempty"`
	Address       *string         `json:"address,omitempty"`
}

// ConfirmPaymentRequest settles a deferred payment. Signature is the
// gateway's hex HMAC digest and is verified when present.
type ConfirmPaymentRequest struct {
	Amount         decimal.Decimal `json:"amount" validate:"required"`
	TransactionRef string          `json:"transaction_ref" validate:"required"`
	Signature      string          `json:"signature,omitempty"`
}

// OrderDTO is the wire shape of an order.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	ProductID       uuid.UUID           `json:"product_id"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	VendorID        uuid.UUID           `json:"vendor_id"`
	Quantity        decimal.Decimal     `json:"quantity"`
	UnitPrice       decimal.Decimal     `json:"unit_price"`
	Total           decimal.Decimal     `json:"total"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	DeliveryMobile  string              `json:"delivery_mobile,omitempty"`
	DeliveryAddress string              `json:"delivery_address,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// PlaceOrderResult pairs the created order with its payment handoff.
// PaymentLink is empty for immediate methods; Notified reports only
// whether the vendor alert was accepted for delivery.
type PlaceOrderResult struct {
	Order       *OrderDTO `json:"order"`
	PaymentLink string    `json:"payment_link,omitempty"`
	Notified    bool      `json:"notified"`
}

func fromModel(order *models.Order) *OrderDTO {
	return &OrderDTO{
		ID:              order.ID,
		ProductID:       order.ProductID,
		CustomerID:      order.CustomerID,
		VendorID:        order.VendorID,
		Quantity:        order.Quantity,
		UnitPrice:       order.UnitPrice,
		Total:           order.Total,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		DeliveryMobile:  order.DeliveryMobile,
		DeliveryAddress: order.DeliveryAddress,
		CreatedAt:       order.CreatedAt,
	}
}
