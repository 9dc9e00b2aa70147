package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/forge-workshop/backend/internal/models"
	"github.com/forge-workshop/backend/internal/payments"
	"github.com/forge-workshop/backend/pkg/response"
)

// RegistrantStore is the persistence surface order creation needs.
type RegistrantStore interface {
	Create(ctx context.Context, reg *models.Registrant) error
}

// OrderCreator opens a payment order at the provider.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*payments.Order, error)
}

// CreateOrderRequest is the body for POST /create-order. Amount is in minor
// currency units.
type CreateOrderRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Phone  string `json:"phone"`
	Bundle bool   `json:"bundle"`
}

// Handler handles payment-order creation.
type Handler struct {
	store    RegistrantStore
	provider OrderCreator
	keyID    string
	currency string
	logger   *zap.Logger
}

// NewHandler creates an orders handler. keyID is returned to clients for
// checkout initiation; currency is the fixed order currency.
func NewHandler(store RegistrantStore, provider OrderCreator, keyID, currency string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, provider: provider, keyID: keyID, currency: currency, logger: logger}
}

// Create handles POST /create-order: opens a provider order and persists a
// pending registrant keyed by the returned order id. There is no compensating
// rollback; a provider order can exist without a local registrant when the
// insert fails (reconciled out of band).
func (h *Handler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	// Millisecond receipt ids are a best-effort uniqueness measure, not a
	// guarantee; the provider-issued order id is the real correlation key.
	receipt := fmt.Sprintf("rcpt_%d", time.Now().UnixMilli())
	order, err := h.provider.CreateOrder(c.Request.Context(), req.Amount, h.currency, receipt)
	if err != nil {
		h.logger.Error("create payment order failed", zap.Error(err), zap.Int64("amount", req.Amount))
		response.Internal(c, "failed to create payment order")
		return
	}

	reg := &models.Registrant{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Bundle:  req.Bundle,
		OrderID: order.ID,
	}
	if err := h.store.Create(c.Request.Context(), reg); err != nil {
		h.logger.Error("create registrant failed", zap.Error(err), zap.String("order_id", order.ID))
		response.Internal(c, "failed to save registration")
		return
	}

	h.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount),
		zap.Bool("bundle", reg.Bundle))
	response.OK(c, gin.H{"order": order, "key_id": h.keyID})
}
