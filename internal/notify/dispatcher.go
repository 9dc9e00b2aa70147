package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/forge-workshop/backend/internal/models"
	"github.com/forge-workshop/backend/pkg/queue"
)

// Dispatcher delivers access emails strictly best-effort: enqueue to the
// worker queue when available, otherwise a detached direct SMTP send,
// otherwise a no-op. Failures are logged and never reach the caller.
type Dispatcher struct {
	queue  *queue.Queue
	mailer Mailer
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher. Both queue and mailer may be nil.
func NewDispatcher(q *queue.Queue, mailer Mailer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{queue: q, mailer: mailer, logger: logger}
}

// Dispatch sends the access summary for a verified registrant.
func (d *Dispatcher) Dispatch(ctx context.Context, reg *models.Registrant) {
	subject, body := AccessSummary(reg)

	if d.queue != nil {
		err := d.queue.EnqueueEmail(ctx, queue.EmailPayload{
			RegistrantID: reg.ID,
			Recipient:    reg.Email,
			Subject:      subject,
			Body:         body,
		})
		if err == nil {
			return
		}
		d.logger.Error("enqueue access email failed, falling back to direct send",
			zap.Error(err), zap.String("registrant_id", reg.ID.String()))
	}

	if d.mailer == nil {
		d.logger.Debug("mail delivery disabled, skipping access email",
			zap.String("registrant_id", reg.ID.String()))
		return
	}

	go func() {
		if err := d.mailer.Send(reg.Email, subject, body); err != nil {
			d.logger.Error("access email send failed", zap.Error(err), zap.String("recipient", reg.Email))
			return
		}
		d.logger.Info("access email sent", zap.String("recipient", reg.Email))
	}()
}
