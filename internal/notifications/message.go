package notifications

import "context"

// Kind labels the business event behind an outbound message. It feeds
// metrics and log fields only; delivery is identical for every kind.
type Kind string

const (
	KindOrderPlaced         Kind = "order_placed"
	KindOrderCanceled       Kind = "order_canceled"
	KindPaymentConfirmed    Kind = "payment_confirmed"
	KindApplicationReceived Kind = "vendor_application_received"
	KindVendorApproved      Kind = "vendor_approved"
	KindVendorRejected      Kind = "vendor_rejected"
)

// Message is one outbound notification. To is a phone number in E.164
// form; empty To drops the message without error.
type Message struct {
	Kind Kind   `json:"kind"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// Notifier schedules a message for delivery. The returned flag is
// informational only: true means the message was accepted for delivery,
// never that it arrived.
type Notifier interface {
	Enqueue(ctx context.Context, msg Message) bool
}
