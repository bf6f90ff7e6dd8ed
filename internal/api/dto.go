package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/popuptinybar/tinybar/internal/pricing"
	"github.com/popuptinybar/tinybar/internal/quotes"
)

type quoteInputBody struct {
	EventType     pricing.EventType     `json:"eventType"`
	GuestCount    int                   `json:"guestCount"`
	CocktailStyle pricing.CocktailStyle `json:"cocktailStyle"`
	ServiceLevel  pricing.ServiceLevel  `json:"serviceLevel"`
	Extras        []string              `json:"extras"`
	EventDate     string                `json:"eventDate,omitempty"`
	IsWeekend     *bool                 `json:"isWeekend,omitempty"`
	Duration      *int                  `json:"duration,omitempty"`
}

// parseEventDate accepts a calendar date (2026-06-06) or an RFC3339 time.
func parseEventDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return &d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("eventDate %q is not a date", s)
	}
	return &t, nil
}

func (b quoteInputBody) toInput() (pricing.QuoteInput, error) {
	date, err := parseEventDate(b.EventDate)
	if err != nil {
		return pricing.QuoteInput{}, err
	}
	return pricing.QuoteInput{
		EventType:     b.EventType,
		GuestCount:    b.GuestCount,
		CocktailStyle: b.CocktailStyle,
		ServiceLevel:  b.ServiceLevel,
		Extras:        b.Extras,
		EventDate:     date,
		IsWeekend:     b.IsWeekend,
		Duration:      b.Duration,
	}, nil
}

// saveQuoteBody may carry the totals the client displayed under "pricing";
// they are decoded and discarded.
type saveQuoteBody struct {
	quoteInputBody
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerPhone   string `json:"customerPhone"`
	VenueAddress    string `json:"venueAddress,omitempty"`
	SpecialRequests string `json:"specialRequests,omitempty"`
	Pricing         any    `json:"pricing,omitempty"`
}

func (b saveQuoteBody) toRequest() (quotes.SaveQuoteRequest, error) {
	in, err := b.toInput()
	if err != nil {
		return quotes.SaveQuoteRequest{}, err
	}
	return quotes.SaveQuoteRequest{
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		EventType:       in.EventType,
		EventDate:       in.EventDate,
		IsWeekend:       in.IsWeekend,
		GuestCount:      in.GuestCount,
		VenueAddress:    b.VenueAddress,
		CocktailStyle:   in.CocktailStyle,
		ServiceLevel:    in.ServiceLevel,
		Extras:          in.Extras,
		SpecialRequests: b.SpecialRequests,
	}, nil
}

type statusBody struct {
	Status string `json:"status"`
}

type formattedTotals struct {
	BasePrice      string `json:"basePrice"`
	PerPersonPrice string `json:"perPersonPrice"`
	ExtrasPrice    string `json:"extrasPrice"`
	Subtotal       string `json:"subtotal"`
	Tax            string `json:"tax"`
	Total          string `json:"total"`
	Savings        string `json:"savings,omitempty"`
}

type calculateResponse struct {
	*pricing.PricingBreakdown
	Currency  string          `json:"currency"`
	Formatted formattedTotals `json:"formatted"`
}

func newCalculateResponse(b *pricing.PricingBreakdown, currency string) calculateResponse {
	f := formattedTotals{
		BasePrice:      pricing.FormatCurrency(b.BasePrice),
		PerPersonPrice: pricing.FormatCurrency(b.PerPersonPrice),
		ExtrasPrice:    pricing.FormatCurrency(b.ExtrasPrice),
		Subtotal:       pricing.FormatCurrency(b.Subtotal),
		Tax:            pricing.FormatCurrency(b.Tax),
		Total:          pricing.FormatCurrency(b.Total),
	}
	if b.Savings != nil {
		f.Savings = pricing.FormatCurrency(*b.Savings)
	}
	return calculateResponse{PricingBreakdown: b, Currency: currency, Formatted: f}
}

type quoteResponse struct {
	*models.Quote
	WhatsAppURL string `json:"whatsappUrl,omitempty"`
}

func newQuoteResponse(q *models.Quote) quoteResponse {
	return quoteResponse{Quote: q, WhatsAppURL: q.WhatsAppLink()}
}

type saveQuoteResponse struct {
	Quote   quoteResponse             `json:"quote"`
	Pricing *pricing.PricingBreakdown `json:"pricing"`
	Message string                    `json:"message"`
}
