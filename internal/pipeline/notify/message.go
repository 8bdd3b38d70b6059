package notify

import (
	"fmt"
	"math"
	"strings"

	"vigia/internal/models"
)

// RenderMessage produces the fixed-format WhatsApp text for a matched
// listing. The asterisks and underscores are WhatsApp markup.
func RenderMessage(listing *models.Listing) string {
	address := listing.FullAddress()
	if address == "" {
		address = "Não informado"
	}

	return fmt.Sprintf(`🎉 *Vigia Imóveis Encontrou!* 🎉

Um novo imóvel que corresponde à sua busca acabou de ser anunciado:

📍 *Endereço:* %s
💰 *Aluguel:* R$ %s
🏢 *Condomínio:* R$ %s

Clique aqui para ver todos os detalhes e fotos:
%s`,
		address,
		formatAmount(listing.Rent),
		formatAmount(listing.CondoFee),
		listing.URL,
	)
}

// formatAmount renders a currency value in pt-BR style: dots for thousands,
// comma for decimals, no decimals for whole values.
func formatAmount(v float64) string {
	if v <= 0 {
		return "N/A"
	}

	whole := int64(v)
	frac := math.Round((v - float64(whole)) * 100)
	if frac >= 100 {
		whole++
		frac = 0
	}

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	if frac > 0 {
		return fmt.Sprintf("%s,%02d", b.String(), int(frac))
	}
	return b.String()
}
