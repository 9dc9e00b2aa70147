package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/forge-workshop/backend/internal/models"
	"github.com/forge-workshop/backend/internal/notify"
	"github.com/forge-workshop/backend/pkg/queue"
)

// JobQueue is the queue surface the processor needs.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// DeliveryLog records access-email delivery attempts.
type DeliveryLog interface {
	Record(ctx context.Context, log *models.EmailLog) error
}

// EmailProcessor drains the email queue: dequeue, SMTP send, delivery log.
type EmailProcessor struct {
	queue   JobQueue
	mailer  notify.Mailer
	mailLog DeliveryLog // optional; nil disables delivery logging
	logger  *zap.Logger
}

// NewEmailProcessor creates an access-email processor.
func NewEmailProcessor(q JobQueue, mailer notify.Mailer, mailLog DeliveryLog, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{queue: q, mailer: mailer, mailLog: mailLog, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	sendErr := p.mailer.Send(payload.Recipient, payload.Subject, payload.Body)
	p.record(ctx, payload, sendErr)
	if sendErr != nil {
		return fmt.Errorf("send email: %w", sendErr)
	}
	p.logger.Info("access email sent", zap.String("recipient", payload.Recipient))
	return nil
}

func (p *EmailProcessor) record(ctx context.Context, payload queue.EmailPayload, sendErr error) {
	if p.mailLog == nil {
		return
	}
	log := &models.EmailLog{
		RegistrantID: payload.RegistrantID,
		Recipient:    payload.Recipient,
		Subject:      payload.Subject,
		Status:       models.EmailStatusSent,
	}
	if sendErr != nil {
		log.Status = models.EmailStatusFailed
		log.Error = sendErr.Error()
	}
	if err := p.mailLog.Record(ctx, log); err != nil {
		p.logger.Warn("record email log failed", zap.Error(err))
	}
}

// Run starts the worker loop: dequeue, process, retry on error. Returns once
// ctx is done; backoff pauses wake up on cancellation too.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.logger.Warn("dequeue error", zap.Error(err))
				p.pause(ctx)
			}
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.pause(ctx)
			continue
		}
	}
}

// pause waits out the retry backoff, returning early on cancellation.
func (p *EmailProcessor) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(queue.RetryBackoff):
	}
}
