package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote_WhatsAppLink(t *testing.T) {
	q := &Quote{CustomerName: "Ana", CustomerPhone: "+52 (55) 1234-5678", GuestCount: 80}
	link := q.WhatsAppLink()
	assert.Contains(t, link, "https://wa.me/525512345678?text=")
	assert.Contains(t, link, "Hola+Ana%21+Vi+tu+cotizaci%C3%B3n+para+80+personas.")

	q.CustomerPhone = "n/a"
	assert.Empty(t, q.WhatsAppLink())
}

func TestNewQuoteStats(t *testing.T) {
	stats := NewQuoteStats([]*Quote{
		{Status: QuoteStatusPending, Total: 1000},
		{Status: QuoteStatusPending, Total: 2000},
		{Status: QuoteStatusConverted, Total: 5000},
	})
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, int64(8000), stats.TotalValue)
	assert.Equal(t, 2, stats.ByStatus[QuoteStatusPending])
	assert.Equal(t, 1, stats.ByStatus[QuoteStatusConverted])
	assert.Equal(t, 0, stats.ByStatus[QuoteStatusDeclined])
}

func TestParseQuoteStatus(t *testing.T) {
	s, err := ParseQuoteStatus("contacted")
	require.NoError(t, err)
	assert.Equal(t, QuoteStatusContacted, s)

	_, err = ParseQuoteStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
