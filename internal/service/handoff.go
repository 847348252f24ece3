package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
)

const handoffGreeting = "Olá! Quero finalizar meu pedido:"

// Handoff formats the order summary the customer sends over WhatsApp.
type Handoff struct {
	number string
}

// NewHandoff creates a Handoff that links to number, digits only, e.g.
// 5511999999999.
func NewHandoff(number string) *Handoff {
	return &Handoff{number: number}
}

// Message renders:
//
//	Olá! Quero finalizar meu pedido:
//
//	Sérum × 2
//	Batom × 1
//
//	Total: R$ 41.00
func (h *Handoff) Message(draft domain.OrderDraft) string {
	lines := make([]string, 0, len(draft.Items))
	for _, it := range draft.Items {
		lines = append(lines, fmt.Sprintf("%s × %d", it.Name, it.Quantity))
	}
	return handoffGreeting + "\n\n" + strings.Join(lines, "\n") + "\n\nTotal: R$ " + draft.Total.String()
}

// URL returns the wa.me link that opens a chat prefilled with message.
func (h *Handoff) URL(message string) string {
	return "https://wa.me/" + h.number + "?text=" + encodeComponent(message)
}

// encodeComponent percent-encodes s for a query value, spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
