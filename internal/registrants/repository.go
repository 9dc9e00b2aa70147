package registrants

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forge-workshop/backend/internal/models"
)

// ErrUnavailable is returned when the service was started without a database
// connection. Startup without DATABASE_URL is a warning, not a failure, so
// store calls surface the gap at request time.
var ErrUnavailable = errors.New("registrant store unavailable: database not configured")

const registrantCols = `id, name, email, phone, bundle, order_id, payment_id, verified, links, created_at, updated_at`

// Repository handles registrant persistence. A nil pool is tolerated; every
// method then fails with ErrUnavailable.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrants repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a pending registrant. The order id comes from the provider's
// order-creation response and is unique per registrant.
func (r *Repository) Create(ctx context.Context, reg *models.Registrant) error {
	if r.pool == nil {
		return ErrUnavailable
	}
	const q = `INSERT INTO registrants (id, name, email, phone, bundle, order_id)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, payment_id, verified, links, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, reg.Name, reg.Email, reg.Phone, reg.Bundle, reg.OrderID).
		Scan(&reg.ID, &reg.PaymentID, &reg.Verified, &reg.Links, &reg.CreatedAt, &reg.UpdatedAt)
}

// GetByOrderID returns the registrant for an order id, or nil when none exists.
func (r *Repository) GetByOrderID(ctx context.Context, orderID string) (*models.Registrant, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	row := r.pool.QueryRow(ctx, `SELECT `+registrantCols+` FROM registrants WHERE order_id = $1`, orderID)
	return scanRegistrant(row)
}

// GetByPaymentID returns the registrant for a payment id, or nil when none exists.
func (r *Repository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Registrant, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	row := r.pool.QueryRow(ctx, `SELECT `+registrantCols+` FROM registrants WHERE payment_id = $1`, paymentID)
	return scanRegistrant(row)
}

// MarkVerified records a confirmed payment for the order in a single atomic
// update and returns the resulting row, or nil when the order is unknown.
// The statement is idempotent under at-least-once webhook delivery: the
// payment id is only set when still null, verified never reverts, and the
// jsonb merge keeps already-present link keys (first write wins), so N
// deliveries converge to the same state as one.
func (r *Repository) MarkVerified(ctx context.Context, orderID, paymentID string, links map[string]string) (*models.Registrant, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	const q = `UPDATE registrants
		SET payment_id = COALESCE(payment_id, $2),
		    verified = TRUE,
		    links = $3::jsonb || links,
		    updated_at = NOW()
		WHERE order_id = $1
		RETURNING ` + registrantCols
	row := r.pool.QueryRow(ctx, q, orderID, paymentID, links)
	return scanRegistrant(row)
}

// ListRecent returns up to limit registrants, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]models.Registrant, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	rows, err := r.pool.Query(ctx, `SELECT `+registrantCols+` FROM registrants ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Registrant
	for rows.Next() {
		var reg models.Registrant
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.Email, &reg.Phone, &reg.Bundle, &reg.OrderID,
			&reg.PaymentID, &reg.Verified, &reg.Links, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

func scanRegistrant(row pgx.Row) (*models.Registrant, error) {
	var reg models.Registrant
	err := row.Scan(&reg.ID, &reg.Name, &reg.Email, &reg.Phone, &reg.Bundle, &reg.OrderID,
		&reg.PaymentID, &reg.Verified, &reg.Links, &reg.CreatedAt, &reg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
