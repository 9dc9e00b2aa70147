package payments

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

// Order is the provider-side payment intent created ahead of checkout.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Client creates payment orders against the Razorpay API.
type Client struct {
	rz     *razorpay.Client
	logger *zap.Logger
}

// NewClient creates a Razorpay-backed order client.
func NewClient(keyID, keySecret string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{rz: razorpay.NewClient(keyID, keySecret), logger: logger}
}

// CreateOrder opens a payment order for amount in minor currency units.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := c.rz.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order create: response missing order id")
	}
	c.logger.Debug("payment order created", zap.String("order_id", id), zap.Int64("amount", amount))
	return &Order{ID: id, Amount: amount, Currency: currency, Receipt: receipt}, nil
}
