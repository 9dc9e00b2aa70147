package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forge-workshop/backend/internal/models"
)

func TestAccessSummaryBundle(t *testing.T) {
	reg := &models.Registrant{
		Name: "A",
		Links: map[string]string{
			models.LinkWhatsApp: "https://chat.example/wa",
			models.LinkTelegram: "https://t.example/tg",
			models.LinkDownload: "https://dl.example/bundle",
		},
	}

	subject, body := AccessSummary(reg)
	assert.NotEmpty(t, subject)
	assert.Contains(t, body, "Hi A,")
	assert.Contains(t, body, "https://chat.example/wa")
	assert.Contains(t, body, "https://t.example/tg")
	assert.Contains(t, body, "https://dl.example/bundle")
}

func TestAccessSummaryWithoutBundle(t *testing.T) {
	reg := &models.Registrant{
		Name:  "B",
		Links: map[string]string{models.LinkWhatsApp: "https://chat.example/wa"},
	}

	_, body := AccessSummary(reg)
	assert.Contains(t, body, "https://chat.example/wa")
	assert.NotContains(t, body, "Telegram")
	assert.NotContains(t, body, "download")
}
