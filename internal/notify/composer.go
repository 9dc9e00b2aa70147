package notify

import (
	"fmt"
	"strings"

	"github.com/forge-workshop/backend/internal/models"
)

// AccessSummary composes the access email for a verified registrant from its
// populated resource links.
func AccessSummary(reg *models.Registrant) (subject, body string) {
	subject = "Your workshop access links"

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nYour payment is confirmed. Here is everything you need:\n\n", reg.Name)
	if v := reg.Links[models.LinkWhatsApp]; v != "" {
		fmt.Fprintf(&b, "WhatsApp group: %s\n", v)
	}
	if v := reg.Links[models.LinkTelegram]; v != "" {
		fmt.Fprintf(&b, "Telegram group: %s\n", v)
	}
	if v := reg.Links[models.LinkDownload]; v != "" {
		fmt.Fprintf(&b, "Bundle download: %s\n", v)
	}
	b.WriteString("\nSee you at the workshop!\n")
	return subject, b.String()
}
