package maillog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forge-workshop/backend/internal/models"
)

// Repository records access-email delivery attempts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a mail log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts one delivery attempt.
func (r *Repository) Record(ctx context.Context, log *models.EmailLog) error {
	const q = `INSERT INTO email_logs (id, registrant_id, recipient, subject, status, error)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, log.RegistrantID, log.Recipient, log.Subject, log.Status, log.Error).
		Scan(&log.ID, &log.CreatedAt)
}
