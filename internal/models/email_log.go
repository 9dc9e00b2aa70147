package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailLog delivery status values.
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// EmailLog records one access-email delivery attempt for a registrant.
type EmailLog struct {
	ID           uuid.UUID `json:"id"`
	RegistrantID uuid.UUID `json:"registrant_id"`
	Recipient    string    `json:"recipient"`
	Subject      string    `json:"subject"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
