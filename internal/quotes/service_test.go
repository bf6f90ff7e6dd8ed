package quotes

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/popuptinybar/tinybar/internal/events"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/popuptinybar/tinybar/internal/pricing"
	"github.com/popuptinybar/tinybar/internal/repositories"
	"github.com/popuptinybar/tinybar/internal/repositories/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ev events.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

type fixture struct {
	svc       *Service
	quotes    *memory.QuoteRepository
	customers *memory.CustomerRepository
	pub       *recordingPublisher
	now       time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		quotes:    memory.NewQuoteRepository(),
		customers: memory.NewCustomerRepository(),
		pub:       &recordingPublisher{},
		now:       time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
	}
	seq := 0
	base := []Option{
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("q%03d", seq) }),
	}
	f.svc = NewService(pricing.Default(), f.quotes, f.customers, f.pub, zerolog.Nop(), append(base, opts...)...)
	return f
}

func validRequest() SaveQuoteRequest {
	return SaveQuoteRequest{
		CustomerName:  "  Ana López ",
		CustomerEmail: "Ana@Example.com",
		CustomerPhone: "+52 55 1234 5678",
		EventType:     pricing.EventWedding,
		GuestCount:    100,
		CocktailStyle: pricing.StyleSignature,
		ServiceLevel:  pricing.ServiceBartender,
		Extras:        []string{"fotografo", "fotografo"},
	}
}

func TestService_Calculate(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Calculate(pricing.QuoteInput{
		EventType:     pricing.EventWedding,
		GuestCount:    100,
		CocktailStyle: pricing.StyleSignature,
		ServiceLevel:  pricing.ServiceBartender,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(370), got.PerPersonPrice)
	assert.Equal(t, int64(52000), got.Subtotal)
	assert.Equal(t, int64(8320), got.Tax)
	assert.Equal(t, int64(60320), got.Total)

	_, err = f.svc.Calculate(pricing.QuoteInput{GuestCount: 501})
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.RequiresDirectContact)
	assert.Contains(t, verr.Messages, "Para eventos de más de 500 personas, contáctanos directamente")
}

func TestService_Save(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, breakdown, err := f.svc.Save(ctx, validRequest())
	require.NoError(t, err)

	assert.Equal(t, "q001", q.ID)
	assert.Equal(t, "Ana López", q.CustomerName)
	assert.Equal(t, "ana@example.com", q.CustomerEmail)
	assert.Equal(t, models.QuoteStatusPending, q.Status)
	assert.Equal(t, []string{"fotografo"}, q.Extras)
	assert.Equal(t, f.now, q.CreatedAt)
	assert.Equal(t, breakdown.Total, q.Total)
	assert.Equal(t, breakdown.Subtotal+breakdown.Tax, q.Total)
	assert.NotEmpty(t, q.CustomerID)

	stored, err := f.quotes.GetByID(ctx, "q001")
	require.NoError(t, err)
	assert.Equal(t, q.Total, stored.Total)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, models.TopicQuoteCreated, f.pub.events[0].Type)
	assert.Equal(t, "q001", f.pub.events[0].Quote.ID)
	assert.NotNil(t, f.pub.events[0].Breakdown)

	second, _, err := f.svc.Save(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, q.CustomerID, second.CustomerID)
}

func TestService_SaveRejectsBadContactAndInput(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.CustomerName = " "
	req.CustomerEmail = "not-an-email"
	req.CustomerPhone = "123"
	req.GuestCount = 10

	_, _, err := f.svc.Save(context.Background(), req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		"Nombre requerido",
		"Email no válido",
		"Teléfono no válido",
		"Mínimo 15 invitados",
	}, verr.Messages)

	n, err := f.quotes.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.pub.events)
}

func TestService_SaveSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	q, _, err := f.svc.Save(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = f.quotes.GetByID(context.Background(), q.ID)
	assert.NoError(t, err)
}

func TestService_ListAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := f.svc.Save(ctx, validRequest())
		require.NoError(t, err)
		f.now = f.now.Add(time.Minute)
	}
	_, err := f.svc.UpdateStatus(ctx, "q002", "converted")
	require.NoError(t, err)

	all, err := f.svc.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "q003", all[0].ID)

	pending, err := f.svc.List(ctx, "pending", 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "q003", pending[0].ID)

	_, err = f.svc.List(ctx, "archived", 0)
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[models.QuoteStatusPending])
	assert.Equal(t, 1, stats.ByStatus[models.QuoteStatusConverted])
	assert.Equal(t, 3*all[0].Total, stats.TotalValue)
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, _, err := f.svc.Save(ctx, validRequest())
	require.NoError(t, err)
	f.now = f.now.Add(time.Hour)

	updated, err := f.svc.UpdateStatus(ctx, q.ID, "contacted")
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusContacted, updated.Status)
	assert.Equal(t, f.now, updated.UpdatedAt)

	require.Len(t, f.pub.events, 2)
	ev := f.pub.events[1]
	assert.Equal(t, models.TopicQuoteStatusChanged, ev.Type)
	assert.Equal(t, models.QuoteStatusPending, ev.PrevStatus)

	_, err = f.svc.UpdateStatus(ctx, q.ID, "lost")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(ctx, "missing", "contacted")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.True(t, IsNotFound(err))

	_, err = f.svc.Get(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

func TestService_ExpireStale(t *testing.T) {
	f := newFixture(t, WithExpiryDays(7))
	ctx := context.Background()

	old, _, err := f.svc.Save(ctx, validRequest())
	require.NoError(t, err)
	f.now = f.now.AddDate(0, 0, 5)
	recent, _, err := f.svc.Save(ctx, validRequest())
	require.NoError(t, err)

	f.now = f.now.AddDate(0, 0, 3)
	n, err := f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := f.svc.Get(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusExpired, got.Status)

	got, err = f.svc.Get(ctx, recent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusPending, got.Status)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, clampLimit(0))
	assert.Equal(t, DefaultListLimit, clampLimit(-3))
	assert.Equal(t, 5, clampLimit(5))
	assert.Equal(t, MaxListLimit, clampLimit(MaxListLimit+1))
}
