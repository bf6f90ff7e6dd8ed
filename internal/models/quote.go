package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/popuptinybar/tinybar/internal/pricing"
)

type Quote struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customerId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`

	EventType    pricing.EventType `json:"eventType"`
	EventDate    *time.Time        `json:"eventDate,omitempty"`
	GuestCount   int               `json:"guestCount"`
	VenueAddress string            `json:"venueAddress,omitempty"`

	CocktailStyle pricing.CocktailStyle `json:"cocktailStyle"`
	ServiceLevel  pricing.ServiceLevel  `json:"serviceLevel"`
	Extras        []string              `json:"extras"`

	// Amounts are whole MXN pesos, always recomputed server side.
	BasePrice      int64 `json:"basePrice"`
	PerPersonPrice int64 `json:"perPersonPrice"`
	ExtrasPrice    int64 `json:"extrasPrice"`
	Subtotal       int64 `json:"subtotal"`
	Tax            int64 `json:"tax"`
	Total          int64 `json:"total"`

	SpecialRequests string      `json:"specialRequests,omitempty"`
	Status          QuoteStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Input rebuilds the pricing input the quote was priced from.
func (q *Quote) Input() pricing.QuoteInput {
	return pricing.QuoteInput{
		EventType:     q.EventType,
		GuestCount:    q.GuestCount,
		CocktailStyle: q.CocktailStyle,
		ServiceLevel:  q.ServiceLevel,
		Extras:        append([]string(nil), q.Extras...),
		EventDate:     q.EventDate,
	}
}

// ApplyPricing copies the stored amounts out of a breakdown.
func (q *Quote) ApplyPricing(b *pricing.PricingBreakdown) {
	q.BasePrice = b.BasePrice
	q.PerPersonPrice = b.PerPersonPrice
	q.ExtrasPrice = b.ExtrasPrice
	q.Subtotal = b.Subtotal
	q.Tax = b.Tax
	q.Total = b.Total
}

// WhatsAppLink opens a chat with the customer prefilled with a follow-up
// message. Empty when the phone has no digits.
func (q *Quote) WhatsAppLink() string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, q.CustomerPhone)
	if digits == "" {
		return ""
	}
	text := fmt.Sprintf("Hola %s! Vi tu cotización para %d personas. ¿Cuándo podemos hablar?", q.CustomerName, q.GuestCount)
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(text)
}

type QuoteFilter struct {
	Status QuoteStatus
	Limit  int
}

type QuoteMetrics struct {
	TotalQuotes       int
	InvalidRequests   int
	DirectContact     int
	TotalRevenue      int64
	AvgQuoteValue     float64
	SavingsGiven      int64
	UpgradesSuggested int
	ByEventType       map[pricing.EventType]int
	ByServiceLevel    map[pricing.ServiceLevel]int
}

// QuoteStats summarises a set of stored quotes for the admin dashboard.
type QuoteStats struct {
	Total      int                 `json:"total"`
	ByStatus   map[QuoteStatus]int `json:"byStatus"`
	TotalValue int64               `json:"totalValue"`
}

func NewQuoteStats(quotes []*Quote) QuoteStats {
	stats := QuoteStats{ByStatus: make(map[QuoteStatus]int, len(QuoteStatuses))}
	for _, s := range QuoteStatuses {
		stats.ByStatus[s] = 0
	}
	for _, q := range quotes {
		stats.Total++
		stats.ByStatus[q.Status]++
		stats.TotalValue += q.Total
	}
	return stats
}
