package factories

import (
	"math/rand"
	"time"

	"github.com/popuptinybar/tinybar/internal/pricing"
	"github.com/popuptinybar/tinybar/internal/quotes"
)

type weighted[T any] struct {
	value  T
	weight float64
}

func pick[T any](rng *rand.Rand, options []weighted[T]) T {
	var total float64
	for _, o := range options {
		total += o.weight
	}
	r := rng.Float64() * total
	for _, o := range options {
		if r < o.weight {
			return o.value
		}
		r -= o.weight
	}
	return options[len(options)-1].value
}

var eventMix = []weighted[pricing.EventType]{
	{pricing.EventWedding, 0.35},
	{pricing.EventCorporate, 0.25},
	{pricing.EventPrivate, 0.30},
	{pricing.EventOther, 0.10},
}

var styleMix = []weighted[pricing.CocktailStyle]{
	{pricing.StyleClassic, 0.35},
	{pricing.StyleSignature, 0.35},
	{pricing.StyleMocktail, 0.10},
	{pricing.StyleCustom, 0.20},
}

var serviceMix = []weighted[pricing.ServiceLevel]{
	{pricing.ServiceSelf, 0.20},
	{pricing.ServiceBartender, 0.55},
	{pricing.ServiceFullExperience, 0.25},
}

// guest ranges per event type, inclusive
var guestRanges = map[pricing.EventType][2]int{
	pricing.EventWedding:   {80, 250},
	pricing.EventCorporate: {30, 200},
	pricing.EventPrivate:   {15, 80},
	pricing.EventOther:     {15, 120},
}

const (
	extraChance           = 0.2
	outlierChance         = 0.03
	minLeadDays           = 14
	maxLeadDays           = 180
	specialChance         = 0.15
	weekendOverrideChance = 0.05
)

// GeneratedRequest is a synthetic quote request and the moment it was made.
type GeneratedRequest struct {
	Request     quotes.SaveQuoteRequest
	RequestedAt time.Time
}

type QuoteRequestFactory struct {
	customers *CustomerFactory
	rng       *rand.Rand
	extras    []pricing.Extra
}

func NewQuoteRequestFactory(seed int64, extras []pricing.Extra) *QuoteRequestFactory {
	return &QuoteRequestFactory{
		customers: NewCustomerFactory(seed),
		rng:       rand.New(rand.NewSource(seed + 1)),
		extras:    extras,
	}
}

func (qf *QuoteRequestFactory) guests(e pricing.EventType) int {
	if qf.rng.Float64() < outlierChance {
		// below the business minimum or above the self-serve maximum
		if qf.rng.Intn(2) == 0 {
			return 5 + qf.rng.Intn(10)
		}
		return 501 + qf.rng.Intn(200)
	}
	r := guestRanges[e]
	return r[0] + qf.rng.Intn(r[1]-r[0]+1)
}

func (qf *QuoteRequestFactory) pickExtras() []string {
	var ids []string
	for _, x := range qf.extras {
		if qf.rng.Float64() < extraChance {
			ids = append(ids, x.ID)
		}
	}
	return ids
}

// CreateRequest makes a request placed between start and end for an event
// two weeks to six months later.
func (qf *QuoteRequestFactory) CreateRequest(start, end time.Time) GeneratedRequest {
	requestedAt := start
	if span := end.Sub(start); span > 0 {
		requestedAt = start.Add(time.Duration(qf.rng.Int63n(int64(span))))
	}
	lead := minLeadDays + qf.rng.Intn(maxLeadDays-minLeadDays+1)
	y, m, d := requestedAt.AddDate(0, 0, lead).Date()
	eventDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	customer := qf.customers.CreateCustomer()
	eventType := pick(qf.rng, eventMix)
	req := quotes.SaveQuoteRequest{
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		EventType:     eventType,
		EventDate:     &eventDate,
		GuestCount:    qf.guests(eventType),
		VenueAddress:  qf.customers.fake.Address().Address(),
		CocktailStyle: pick(qf.rng, styleMix),
		ServiceLevel:  pick(qf.rng, serviceMix),
		Extras:        qf.pickExtras(),
	}
	if qf.rng.Float64() < weekendOverrideChance {
		weekend := true
		req.IsWeekend = &weekend
	}
	if qf.rng.Float64() < specialChance {
		req.SpecialRequests = qf.customers.fake.Lorem().Sentence(8)
	}
	return GeneratedRequest{Request: req, RequestedAt: requestedAt}
}
