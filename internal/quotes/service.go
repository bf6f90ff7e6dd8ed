// Package quotes ties the pricing engine to storage and event publishing.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/lucsky/cuid"
	"github.com/popuptinybar/tinybar/internal/events"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/popuptinybar/tinybar/internal/pricing"
	"github.com/popuptinybar/tinybar/internal/repositories"
	"github.com/rs/zerolog"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
	minPhoneDigits   = 10
)

// Publisher is satisfied by *events.Emitter.
type Publisher interface {
	Publish(ev events.Event) error
}

type SaveQuoteRequest struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	EventType    pricing.EventType
	EventDate    *time.Time
	IsWeekend    *bool
	GuestCount   int
	VenueAddress string

	CocktailStyle pricing.CocktailStyle
	ServiceLevel  pricing.ServiceLevel
	Extras        []string

	SpecialRequests string
}

func (r SaveQuoteRequest) Input() pricing.QuoteInput {
	return pricing.QuoteInput{
		EventType:     r.EventType,
		GuestCount:    r.GuestCount,
		CocktailStyle: r.CocktailStyle,
		ServiceLevel:  r.ServiceLevel,
		Extras:        r.Extras,
		EventDate:     r.EventDate,
		IsWeekend:     r.IsWeekend,
	}
}

type Service struct {
	calc      *pricing.Calculator
	quotes    repositories.QuoteRepository
	customers repositories.CustomerRepository
	publisher Publisher
	logger    zerolog.Logger
	expiry    time.Duration
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithExpiryDays(days int) Option {
	return func(s *Service) { s.expiry = time.Duration(days) * 24 * time.Hour }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(
	calc *pricing.Calculator,
	quotes repositories.QuoteRepository,
	customers repositories.CustomerRepository,
	publisher Publisher,
	logger zerolog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		calc:      calc,
		quotes:    quotes,
		customers: customers,
		publisher: publisher,
		logger:    logger,
		expiry:    30 * 24 * time.Hour,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     cuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Calculator() *pricing.Calculator { return s.calc }

func (s *Service) Validate(in pricing.QuoteInput) pricing.ValidationResult {
	return s.calc.Validate(in)
}

// Calculate validates the input before pricing it; invalid input returns a
// *ValidationError.
func (s *Service) Calculate(in pricing.QuoteInput) (*pricing.PricingBreakdown, error) {
	if res := s.calc.Validate(in); !res.Valid {
		return nil, &ValidationError{Messages: res.Errors, RequiresDirectContact: res.RequiresDirectContact}
	}
	return s.calc.Calculate(in)
}

// Save stores a quote request as pending. Prices are always recomputed here;
// whatever totals the client showed are ignored.
func (s *Service) Save(ctx context.Context, req SaveQuoteRequest) (*models.Quote, *pricing.PricingBreakdown, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)

	msgs := contactErrors(req)
	res := s.calc.Validate(req.Input())
	msgs = append(msgs, res.Errors...)
	if len(msgs) > 0 {
		return nil, nil, &ValidationError{Messages: msgs, RequiresDirectContact: res.RequiresDirectContact}
	}

	breakdown, err := s.calc.Calculate(req.Input())
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	customer, err := s.customers.UpsertByEmail(ctx, &models.Customer{
		Name:      req.CustomerName,
		Email:     req.CustomerEmail,
		Phone:     req.CustomerPhone,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("upsert customer: %w", err)
	}

	quote := &models.Quote{
		ID:              s.newID(),
		CustomerID:      customer.ID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		EventType:       req.EventType,
		EventDate:       req.EventDate,
		GuestCount:      req.GuestCount,
		VenueAddress:    strings.TrimSpace(req.VenueAddress),
		CocktailStyle:   req.CocktailStyle,
		ServiceLevel:    req.ServiceLevel,
		Extras:          pricing.UniqueExtras(req.Extras),
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
		Status:          models.QuoteStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	quote.ApplyPricing(breakdown)

	if err := s.quotes.Create(ctx, quote); err != nil {
		return nil, nil, fmt.Errorf("save quote: %w", err)
	}
	s.logger.Info().
		Str("quote_id", quote.ID).
		Str("event_type", string(quote.EventType)).
		Int("guests", quote.GuestCount).
		Int64("total", quote.Total).
		Msg("quote saved")

	ev := events.NewEvent(models.TopicQuoteCreated, quote, now)
	ev.Breakdown = breakdown
	s.publish(ev)
	return quote, breakdown, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Quote, error) {
	q, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote %s: %w", id, err)
	}
	return q, nil
}

// List returns quotes newest first. An empty status lists all of them.
func (s *Service) List(ctx context.Context, status string, limit int) ([]*models.Quote, error) {
	filter := models.QuoteFilter{Limit: clampLimit(limit)}
	if status != "" {
		st, err := models.ParseQuoteStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	return s.quotes.List(ctx, filter)
}

func (s *Service) Stats(ctx context.Context) (models.QuoteStats, error) {
	all, err := s.quotes.List(ctx, models.QuoteFilter{})
	if err != nil {
		return models.QuoteStats{}, err
	}
	return models.NewQuoteStats(all), nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*models.Quote, error) {
	st, err := models.ParseQuoteStatus(status)
	if err != nil {
		return nil, err
	}
	prev, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote %s: %w", id, err)
	}
	now := s.now()
	q, err := s.quotes.UpdateStatus(ctx, id, st, now)
	if err != nil {
		return nil, fmt.Errorf("update quote %s: %w", id, err)
	}
	s.logger.Info().
		Str("quote_id", id).
		Str("from", string(prev.Status)).
		Str("to", string(st)).
		Msg("quote status changed")

	ev := events.NewEvent(models.TopicQuoteStatusChanged, q, now)
	ev.PrevStatus = prev.Status
	s.publish(ev)
	return q, nil
}

// ExpireStale marks pending quotes older than the expiry window as expired.
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	now := s.now()
	cutoff := now.Add(-s.expiry)
	n, err := s.quotes.ExpirePending(ctx, cutoff, now)
	if err != nil {
		return 0, fmt.Errorf("expire pending quotes: %w", err)
	}
	s.logger.Info().Int64("expired", n).Time("cutoff", cutoff).Msg("stale quotes expired")
	return n, nil
}

func (s *Service) publish(ev events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ev); err != nil {
		s.logger.Warn().Err(err).Str("event", ev.Type).Str("quote_id", ev.Quote.ID).Msg("event not published")
	}
}

func contactErrors(req SaveQuoteRequest) []string {
	var msgs []string
	if req.CustomerName == "" {
		msgs = append(msgs, "Nombre requerido")
	}
	if req.CustomerEmail == "" {
		msgs = append(msgs, "Email requerido")
	} else if addr, err := mail.ParseAddress(req.CustomerEmail); err != nil || addr.Address != req.CustomerEmail {
		msgs = append(msgs, "Email no válido")
	}
	if req.CustomerPhone == "" {
		msgs = append(msgs, "Teléfono requerido")
	} else if countDigits(req.CustomerPhone) < minPhoneDigits {
		msgs = append(msgs, "Teléfono no válido")
	}
	return msgs
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// IsNotFound reports whether err came from a missing quote.
func IsNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}
