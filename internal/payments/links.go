package payments

import "github.com/forge-workshop/backend/internal/models"

// ResourceLinks are the configured access URLs handed to verified registrants.
type ResourceLinks struct {
	WhatsApp string
	Telegram string
	Download string
}

// For returns the link set owed to a registrant: whatsapp for everyone,
// telegram and download only on the bundle tier.
func (l ResourceLinks) For(bundle bool) map[string]string {
	links := map[string]string{models.LinkWhatsApp: l.WhatsApp}
	if bundle {
		links[models.LinkTelegram] = l.Telegram
		links[models.LinkDownload] = l.Download
	}
	return links
}
