package registrants

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/forge-workshop/backend/internal/models"
	"github.com/forge-workshop/backend/pkg/response"
)

// recentLimit caps the diagnostic listing.
const recentLimit = 30

// Store is the registrant lookup surface the handlers need.
type Store interface {
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Registrant, error)
	ListRecent(ctx context.Context, limit int) ([]models.Registrant, error)
}

// Handler serves attendee status lookups.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a registrants handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Status handles GET /attendee-status/:paymentId. The payment id acts as an
// unauthenticated capability token; it only exists once a webhook has
// confirmed the payment.
func (h *Handler) Status(c *gin.Context) {
	paymentID := c.Param("paymentId")
	if paymentID == "" {
		response.BadRequest(c, "payment id required")
		return
	}
	reg, err := h.store.GetByPaymentID(c.Request.Context(), paymentID)
	if err != nil {
		h.logger.Error("attendee status lookup failed", zap.Error(err), zap.String("payment_id", paymentID))
		response.Internal(c, "failed to load attendee status")
		return
	}
	if reg == nil {
		response.NotFound(c, "no attendee found for this payment")
		return
	}
	response.OK(c, gin.H{"verified": reg.Verified, "links": reg.Links})
}

// Recent handles GET /_recent-attendees, a diagnostic listing of the newest
// registrants. Only routed when DEBUG_ENDPOINTS is enabled.
func (h *Handler) Recent(c *gin.Context) {
	list, err := h.store.ListRecent(c.Request.Context(), recentLimit)
	if err != nil {
		h.logger.Error("recent attendees lookup failed", zap.Error(err))
		response.Internal(c, "failed to list attendees")
		return
	}
	response.OK(c, gin.H{"attendees": list, "count": len(list)})
}
