package budget

import (
	"net/url"
	"strings"

	"github.com/Aneli0/atelie.works/internal/catalog"
)

// ShareText builds the client-facing WhatsApp summary of a budget. It only
// formats totals that were already computed; it is not a recalculation path.
func ShareText(b catalog.Budget, studioName string) string {
	if studioName == "" {
		studioName = "Personalizado"
	}

	var sb strings.Builder
	sb.WriteString("Olá! Segue o orçamento do ateliê " + studioName + ":\n\n")
	for i, item := range b.Items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("• " + item.NameSnapshot + " (" + string(item.LineSnapshot) + ") - " +
			catalog.FormatQuantity(item.Quantity) + " un: " + catalog.FormatBRL(item.LineTotal))
	}
	sb.WriteString("\n\nTotal Geral: " + catalog.FormatBRL(b.GrandTotal))
	return sb.String()
}

// ShareURL builds the wa.me link for the budget summary. When the client
// phone is known the Brazilian country code is prefixed and non-digits are
// stripped.
func ShareURL(b catalog.Budget, studioName string) string {
	encoded := url.QueryEscape(ShareText(b, studioName))
	if b.ClientPhone == "" {
		return "https://wa.me/?text=" + encoded
	}
	return "https://wa.me/55" + onlyDigits(b.ClientPhone) + "?text=" + encoded
}

func onlyDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
