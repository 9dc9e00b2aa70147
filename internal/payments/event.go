package payments

import (
	"encoding/json"
	"fmt"
)

// Webhook event kinds that drive a state change. Everything else is
// acknowledged and ignored.
const (
	EventPaymentCaptured   = "payment.captured"
	EventPaymentAuthorized = "payment.authorized"
	EventOrderPaid         = "order.paid"
)

// PaymentEntity is the nested payment object inside a webhook payload.
type PaymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// OrderEntity is the nested order object inside an order.paid payload.
type OrderEntity struct {
	ID string `json:"id"`
}

// Event is a decoded provider webhook notification.
type Event struct {
	Kind    string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity OrderEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// ParseEvent decodes a raw webhook body.
func ParseEvent(raw []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	return &e, nil
}

// Recognized reports whether the event kind drives a state change.
func (e *Event) Recognized() bool {
	switch e.Kind {
	case EventPaymentCaptured, EventPaymentAuthorized, EventOrderPaid:
		return true
	}
	return false
}

// PaymentRef extracts the order and payment identifiers from the nested
// payment entity, falling back to the order entity for the order id. ok is
// false when no order id is present anywhere in the payload.
func (e *Event) PaymentRef() (orderID, paymentID string, ok bool) {
	p := e.Payload.Payment.Entity
	orderID = p.OrderID
	if orderID == "" {
		orderID = e.Payload.Order.Entity.ID
	}
	if orderID == "" {
		return "", "", false
	}
	return orderID, p.ID, true
}
