package payments

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/forge-workshop/backend/pkg/response"
)

// CheckoutHandler acknowledges the client-side checkout callback. The report
// is advisory only; registrant state changes exclusively through the webhook.
type CheckoutHandler struct {
	logger *zap.Logger
}

// NewCheckoutHandler creates the advisory checkout handler.
func NewCheckoutHandler(logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{logger: logger}
}

// Verify handles POST /payment-verify with an arbitrary body.
func (h *CheckoutHandler) Verify(c *gin.Context) {
	body, _ := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
	h.logger.Debug("client checkout report received", zap.Int("body_bytes", len(body)))
	response.OK(c, nil)
}
