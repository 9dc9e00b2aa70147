package models

import (
	"time"

	"github.com/google/uuid"
)

// Link kinds populated on a verified registrant.
const (
	LinkWhatsApp = "whatsapp"
	LinkTelegram = "telegram"
	LinkDownload = "download"
)

// Registrant is a workshop registration tied to a provider payment order.
// order_id is the sole correlation key between order creation and the
// provider's webhook; payment_id is set only once a webhook confirms payment.
type Registrant struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone,omitempty"`
	Bundle    bool              `json:"bundle"`
	OrderID   string            `json:"order_id"`
	PaymentID *string           `json:"payment_id,omitempty"`
	Verified  bool              `json:"verified"`
	Links     map[string]string `json:"links"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
