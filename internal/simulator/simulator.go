// Package simulator generates synthetic quote demand, prices it through the
// quote service and streams the results to an output destination.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/lucsky/cuid"
	"github.com/popuptinybar/tinybar/internal/events"
	"github.com/popuptinybar/tinybar/internal/factories"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/popuptinybar/tinybar/internal/pricing"
	"github.com/popuptinybar/tinybar/internal/quotes"
	"github.com/popuptinybar/tinybar/internal/repositories"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

type Simulator struct {
	Config      *models.Config
	CurrentTime time.Time
	Metrics     models.QuoteMetrics

	calc     *pricing.Calculator
	service  *quotes.Service
	factory  *factories.QuoteRequestFactory
	emitter  *events.Emitter
	logger   zerolog.Logger
	progress io.Writer
}

type Option func(*Simulator)

// WithStorage saves every valid request through the quote service.
func WithStorage(quoteRepo repositories.QuoteRepository, customerRepo repositories.CustomerRepository) Option {
	return func(s *Simulator) {
		s.service = quotes.NewService(s.calc, quoteRepo, customerRepo, s.emitter, s.logger,
			quotes.WithClock(func() time.Time { return s.CurrentTime }),
			quotes.WithExpiryDays(s.Config.QuoteExpiryDays),
		)
	}
}

// WithProgress draws a progress bar on w.
func WithProgress(w io.Writer) Option {
	return func(s *Simulator) { s.progress = w }
}

func NewSimulator(config *models.Config, calc *pricing.Calculator, emitter *events.Emitter, logger zerolog.Logger, opts ...Option) *Simulator {
	sim := &Simulator{
		Config:      config,
		CurrentTime: config.Simulation.StartDate,
		calc:        calc,
		factory:     factories.NewQuoteRequestFactory(config.Simulation.Seed, calc.AvailableExtras()),
		emitter:     emitter,
		logger:      logger,
		progress:    io.Discard,
		Metrics: models.QuoteMetrics{
			ByEventType:    make(map[pricing.EventType]int),
			ByServiceLevel: make(map[pricing.ServiceLevel]int),
		},
	}
	for _, opt := range opts {
		opt(sim)
	}
	return sim
}

// Run processes Simulation.QuoteCount requests in the order they were
// placed. It stops early when ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) (models.QuoteMetrics, error) {
	start, end := s.Config.Simulation.StartDate, s.Config.Simulation.EndDate
	requests := make([]factories.GeneratedRequest, s.Config.Simulation.QuoteCount)
	for i := range requests {
		requests[i] = s.factory.CreateRequest(start, end)
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].RequestedAt.Before(requests[j].RequestedAt)
	})

	s.logger.Info().
		Time("start", start).
		Time("end", end).
		Int("requests", len(requests)).
		Bool("save", s.service != nil).
		Msg("simulation started")

	bar := progressbar.NewOptions(len(requests),
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionSetDescription("simulating quotes"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	for _, g := range requests {
		if err := ctx.Err(); err != nil {
			return s.Metrics, err
		}
		s.CurrentTime = g.RequestedAt
		if err := s.process(ctx, g.Request); err != nil {
			return s.Metrics, err
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if s.Metrics.TotalQuotes > 0 {
		s.Metrics.AvgQuoteValue = float64(s.Metrics.TotalRevenue) / float64(s.Metrics.TotalQuotes)
	}
	s.logger.Info().
		Int("quotes", s.Metrics.TotalQuotes).
		Int("invalid", s.Metrics.InvalidRequests).
		Int64("revenue", s.Metrics.TotalRevenue).
		Msg("simulation completed")
	return s.Metrics, nil
}

func (s *Simulator) process(ctx context.Context, req quotes.SaveQuoteRequest) error {
	res := s.calc.Validate(req.Input())
	if !res.Valid {
		s.Metrics.InvalidRequests++
		if res.RequiresDirectContact {
			s.Metrics.DirectContact++
		}
		s.logger.Debug().Strs("errors", res.Errors).Int("guests", req.GuestCount).Msg("request rejected")
		return nil
	}

	var (
		quote     *models.Quote
		breakdown *pricing.PricingBreakdown
		err       error
	)
	if s.service != nil {
		quote, breakdown, err = s.service.Save(ctx, req)
		if err != nil {
			var verr *quotes.ValidationError
			if errors.As(err, &verr) {
				s.Metrics.InvalidRequests++
				return nil
			}
			return fmt.Errorf("save simulated quote: %w", err)
		}
	} else {
		breakdown, err = s.calc.Calculate(req.Input())
		if err != nil {
			return err
		}
		quote = s.unsavedQuote(req, breakdown)
		ev := events.NewEvent(models.TopicQuotePriced, quote, s.CurrentTime)
		ev.Breakdown = breakdown
		if err := s.emitter.Publish(ev); err != nil {
			s.logger.Warn().Err(err).Str("quote_id", quote.ID).Msg("failed to write message")
		}
	}
	s.record(quote, breakdown)
	return nil
}

func (s *Simulator) unsavedQuote(req quotes.SaveQuoteRequest, b *pricing.PricingBreakdown) *models.Quote {
	q := &models.Quote{
		ID:              cuid.New(),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		EventType:       req.EventType,
		EventDate:       req.EventDate,
		GuestCount:      req.GuestCount,
		VenueAddress:    req.VenueAddress,
		CocktailStyle:   req.CocktailStyle,
		ServiceLevel:    req.ServiceLevel,
		Extras:          pricing.UniqueExtras(req.Extras),
		SpecialRequests: req.SpecialRequests,
		Status:          models.QuoteStatusPending,
		CreatedAt:       s.CurrentTime,
		UpdatedAt:       s.CurrentTime,
	}
	q.ApplyPricing(b)
	return q
}

func (s *Simulator) record(q *models.Quote, b *pricing.PricingBreakdown) {
	s.Metrics.TotalQuotes++
	s.Metrics.TotalRevenue += q.Total
	s.Metrics.ByEventType[q.EventType]++
	s.Metrics.ByServiceLevel[q.ServiceLevel]++
	if b.Savings != nil {
		s.Metrics.SavingsGiven += *b.Savings
	}
	if b.RecommendedUpgrade != nil {
		s.Metrics.UpgradesSuggested++
	}
}
