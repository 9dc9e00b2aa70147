package payments

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/forge-workshop/backend/internal/models"
	"github.com/forge-workshop/backend/pkg/response"
)

// RegistrantStore is the persistence surface the webhook needs.
type RegistrantStore interface {
	GetByOrderID(ctx context.Context, orderID string) (*models.Registrant, error)
	MarkVerified(ctx context.Context, orderID, paymentID string, links map[string]string) (*models.Registrant, error)
}

// Dispatcher delivers the access email for a newly verified registrant.
// Implementations must never block the webhook response path.
type Dispatcher interface {
	Dispatch(ctx context.Context, reg *models.Registrant)
}

// WebhookHandler is the authoritative payment-confirmation path: it verifies
// the provider signature over the raw body, maps the event to a registrant by
// order id, and flips the registrant to verified with its resource links.
type WebhookHandler struct {
	store      RegistrantStore
	dispatcher Dispatcher
	links      ResourceLinks
	secret     string
	logger     *zap.Logger
}

// NewWebhookHandler creates the webhook handler. An empty secret disables
// signature verification entirely; that deployment mode accepts forged
// events and is only acceptable behind a trusted proxy.
func NewWebhookHandler(store RegistrantStore, dispatcher Dispatcher, links ResourceLinks, secret string, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if secret == "" {
		logger.Warn("webhook secret not configured; signature verification disabled")
	}
	return &WebhookHandler{store: store, dispatcher: dispatcher, links: links, secret: secret, logger: logger}
}

// Handle processes POST /webhook. Once the signature is accepted the provider
// always gets a 200: it interprets non-2xx as "redeliver", and redelivery has
// no corrective value for unknown orders or store failures because the state
// transition is idempotent.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Internal(c, "failed to read request body")
		return
	}

	if h.secret != "" {
		if !ValidSignature(h.secret, body, c.GetHeader(SignatureHeader)) {
			h.logger.Warn("webhook signature mismatch", zap.Int("body_bytes", len(body)))
			c.String(http.StatusBadRequest, "invalid signature")
			return
		}
	} else {
		h.logger.Warn("accepting webhook without signature verification")
	}

	evt, err := ParseEvent(body)
	if err != nil {
		h.logger.Warn("webhook body not parseable", zap.Error(err))
		response.OK(c, nil)
		return
	}
	if !evt.Recognized() {
		h.logger.Debug("ignoring webhook event", zap.String("event", evt.Kind))
		response.OK(c, nil)
		return
	}

	orderID, paymentID, ok := evt.PaymentRef()
	if !ok {
		h.logger.Warn("webhook event missing order id", zap.String("event", evt.Kind))
		response.OK(c, nil)
		return
	}

	ctx := c.Request.Context()
	reg, err := h.store.GetByOrderID(ctx, orderID)
	if err != nil {
		h.logger.Error("registrant lookup failed", zap.Error(err), zap.String("order_id", orderID))
		response.OK(c, nil)
		return
	}
	if reg == nil {
		h.logger.Info("webhook for unknown order", zap.String("order_id", orderID), zap.String("event", evt.Kind))
		response.OK(c, nil)
		return
	}

	wasVerified := reg.Verified
	updated, err := h.store.MarkVerified(ctx, orderID, paymentID, h.links.For(reg.Bundle))
	if err != nil {
		h.logger.Error("mark verified failed", zap.Error(err), zap.String("order_id", orderID))
		response.OK(c, nil)
		return
	}

	if updated != nil && !wasVerified {
		h.logger.Info("payment verified",
			zap.String("order_id", orderID),
			zap.String("payment_id", paymentID),
			zap.Bool("bundle", updated.Bundle))
		// The request context ends with the response; delivery runs detached.
		h.dispatcher.Dispatch(context.Background(), updated)
	}

	response.OK(c, nil)
}
