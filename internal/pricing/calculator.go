package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Calculator prices quotes against one immutable RateTables value.
type Calculator struct {
	rates   RateTables
	extras  map[string]Extra
	peak    map[time.Month]bool
	weekend map[time.Weekday]bool
}

// NewCalculator validates rates and takes a private copy of them.
func NewCalculator(rates RateTables) (*Calculator, error) {
	if err := rates.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate tables: %w", err)
	}
	r := rates.clone()
	c := &Calculator{
		rates:   r,
		extras:  make(map[string]Extra, len(r.Extras)),
		peak:    make(map[time.Month]bool, len(r.PeakMonths)),
		weekend: make(map[time.Weekday]bool, len(r.WeekendDays)),
	}
	for _, x := range r.Extras {
		c.extras[x.ID] = x
	}
	for _, m := range r.PeakMonths {
		c.peak[m] = true
	}
	for _, d := range r.WeekendDays {
		c.weekend[d] = true
	}
	return c, nil
}

// MustNewCalculator is NewCalculator for tables known at compile time.
func MustNewCalculator(rates RateTables) *Calculator {
	c, err := NewCalculator(rates)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultCalculator = MustNewCalculator(DefaultRates())

// Default returns the calculator built from DefaultRates.
func Default() *Calculator { return defaultCalculator }

// CalculateQuote prices input with the default rate tables.
func CalculateQuote(input QuoteInput) (*PricingBreakdown, error) {
	return defaultCalculator.Calculate(input)
}

// Rates returns a copy of the tables this calculator prices with.
func (c *Calculator) Rates() RateTables { return c.rates.clone() }

// round is half away from zero. Every amount the engine rounds is
// non-negative, so this is round-half-up.
func round(v float64) int64 { return int64(math.Round(v)) }

func (c *Calculator) setupFee(e EventType) (int64, error) {
	fee, ok := c.rates.SetupFees[e]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEventType, e)
	}
	return fee, nil
}

func (c *Calculator) serviceMultiplier(l ServiceLevel) (float64, error) {
	m, ok := c.rates.ServiceMultipliers[l]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownServiceLevel, l)
	}
	return m, nil
}

// BasePrice is the event setup fee scaled by the service level.
func (c *Calculator) BasePrice(e EventType, l ServiceLevel) (int64, error) {
	fee, err := c.setupFee(e)
	if err != nil {
		return 0, err
	}
	m, err := c.serviceMultiplier(l)
	if err != nil {
		return 0, err
	}
	return round(float64(fee) * m), nil
}

// VolumeDiscount returns the fraction granted by the highest tier whose
// minimum is at most guests.
func (c *Calculator) VolumeDiscount(guests int) float64 {
	for _, t := range c.rates.VolumeDiscounts {
		if guests >= t.MinGuests {
			return t.Discount
		}
	}
	return 0
}

// PerPerson prices one guest and the volume savings across all guests.
func (c *Calculator) PerPerson(s CocktailStyle, guests int, l ServiceLevel) (PerPersonPricing, error) {
	rate, ok := c.rates.PerPerson[s]
	if !ok {
		return PerPersonPricing{}, fmt.Errorf("%w: %q", ErrUnknownCocktailStyle, s)
	}
	m, err := c.serviceMultiplier(l)
	if err != nil {
		return PerPersonPricing{}, err
	}
	list := round(float64(rate) * m)
	discount := c.VolumeDiscount(guests)
	if discount == 0 {
		return PerPersonPricing{ListUnitPrice: list, UnitPrice: list}, nil
	}
	unit := round(float64(list) * (1 - discount))
	return PerPersonPricing{
		ListUnitPrice: list,
		UnitPrice:     unit,
		Discount:      discount,
		Savings:       (list - unit) * int64(guests),
	}, nil
}

// UniqueExtras returns a copy of ids without repeats, keeping first-seen order.
func UniqueExtras(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (c *Calculator) extraAmount(x Extra, guests int) int64 {
	if x.PerGuest {
		return x.Price * int64(guests)
	}
	return x.Price
}

// ExtrasTotal sums the catalog price of each distinct id. Unknown ids are
// ignored.
func (c *Calculator) ExtrasTotal(ids []string, guests int) int64 {
	var total int64
	for _, id := range UniqueExtras(ids) {
		x, ok := c.extras[id]
		if !ok {
			continue
		}
		total += c.extraAmount(x, guests)
	}
	return total
}

// DateMultiplier composes the peak-season and weekend premiums. A non-nil
// weekend override wins over the weekday of date.
func (c *Calculator) DateMultiplier(date *time.Time, weekendOverride *bool) DateFactor {
	f := DateFactor{Multiplier: 1.0}
	if date != nil && c.peak[date.Month()] {
		f.Multiplier *= c.rates.PeakMultiplier
		f.Peak = true
	}
	weekend := false
	if weekendOverride != nil {
		weekend = *weekendOverride
	} else if date != nil {
		weekend = c.weekend[date.Weekday()]
	}
	if weekend {
		f.Multiplier *= c.rates.WeekendMultiplier
		f.Weekend = true
	}
	return f
}

// RecommendUpgrade suggests the next service level. The first matching rule
// wins; nil means there is nothing to suggest.
func (c *Calculator) RecommendUpgrade(l ServiceLevel, e EventType, guests int) *Upgrade {
	fee, ok := c.rates.SetupFees[e]
	if !ok {
		return nil
	}
	switch {
	case l == ServiceBartender && guests >= 50:
		return &Upgrade{
			Name:           "Full Experience con Show",
			Level:          ServiceFullExperience,
			AdditionalCost: round(float64(fee) * c.rates.Upgrades.ToFullExperience),
			Benefit:        "Incluye bartender profesional, estación de garnish premium, y show de mixología",
		}
	case l == ServiceSelf && e == EventWedding:
		return &Upgrade{
			Name:           "Upgrade a Bartender Profesional",
			Level:          ServiceBartender,
			AdditionalCost: round(float64(fee) * c.rates.Upgrades.ToBartender),
			Benefit:        "Servicio profesional para que tú disfrutes tu evento sin preocupaciones",
		}
	}
	return nil
}

// Calculate prices input. It assumes input passed Validate; unknown enum
// values are programming errors and are returned as such, never defaulted.
func (c *Calculator) Calculate(input QuoteInput) (*PricingBreakdown, error) {
	if input.GuestCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidGuestCount, input.GuestCount)
	}
	guests := int64(input.GuestCount)

	basePrice, err := c.BasePrice(input.EventType, input.ServiceLevel)
	if err != nil {
		return nil, err
	}
	pp, err := c.PerPerson(input.CocktailStyle, input.GuestCount, input.ServiceLevel)
	if err != nil {
		return nil, err
	}
	perPersonTotal := pp.UnitPrice * guests
	extras := UniqueExtras(input.Extras)
	extrasPrice := c.ExtrasTotal(extras, input.GuestCount)

	preDate := basePrice + perPersonTotal + extrasPrice
	subtotal := preDate
	date := c.DateMultiplier(input.EventDate, input.IsWeekend)
	if date.Multiplier > 1.0 {
		subtotal = round(float64(preDate) * date.Multiplier)
	}
	tax := round(float64(subtotal) * c.rates.TaxRate)

	out := &PricingBreakdown{
		BasePrice:      basePrice,
		PerPersonPrice: pp.UnitPrice,
		PerPersonTotal: perPersonTotal,
		ExtrasPrice:    extrasPrice,
		Subtotal:       subtotal,
		Tax:            tax,
		Total:          subtotal + tax,
		DiscountRate:   pp.Discount,
		DateMultiplier: date.Multiplier,
	}

	// The service line is priced at the list rate; the discount line below
	// brings it down to PerPersonTotal.
	rate := FormatCurrency(pp.ListUnitPrice) + " por persona"
	if pp.Savings > 0 {
		rate += " antes de descuento"
	}
	out.Breakdown = append(out.Breakdown,
		LineItem{
			Label:       "Setup de Barra Móvil",
			Amount:      basePrice,
			Description: "Incluye barra premium, equipo profesional, y " + serviceLabels[input.ServiceLevel],
		},
		LineItem{
			Label:       fmt.Sprintf("Servicio de Cocktails (%d personas)", input.GuestCount),
			Amount:      pp.ListUnitPrice * guests,
			Description: fmt.Sprintf("%s • %s • Barra libre 4-6 horas", rate, styleLabels[input.CocktailStyle]),
		},
	)
	if pp.Savings > 0 {
		savings := pp.Savings
		out.Savings = &savings
		out.Breakdown = append(out.Breakdown, LineItem{
			Label:       fmt.Sprintf("Descuento por volumen (%d%%)", round(pp.Discount*100)),
			Amount:      -savings,
			Description: fmt.Sprintf("%d invitados = tarifa preferencial", input.GuestCount),
		})
	}
	if extrasPrice > 0 {
		labels := make([]string, 0, len(extras))
		for _, id := range extras {
			if x, ok := c.extras[id]; ok && c.extraAmount(x, input.GuestCount) > 0 {
				labels = append(labels, x.Label)
			}
		}
		out.Breakdown = append(out.Breakdown, LineItem{
			Label:       "Extras",
			Amount:      extrasPrice,
			Description: strings.Join(labels, ", "),
		})
	}
	if date.Multiplier > 1.0 {
		out.Breakdown = append(out.Breakdown, LineItem{
			Label:       fmt.Sprintf("Fecha premium (+%d%%)", premiumPercent(date.Multiplier)),
			Amount:      subtotal - preDate,
			Description: datePremiumReason(date),
		})
	}
	out.Breakdown = append(out.Breakdown, LineItem{
		Label:  fmt.Sprintf("IVA (%d%%)", round(c.rates.TaxRate*100)),
		Amount: tax,
	})

	out.RecommendedUpgrade = c.RecommendUpgrade(input.ServiceLevel, input.EventType, input.GuestCount)
	return out, nil
}

// premiumPercent reads a composed multiplier at basis point precision, so
// 1.1 x 1.15 (1.26499999... in float64) shows as 27 rather than 26.
func premiumPercent(m float64) int64 {
	bp := round((m - 1) * 10000)
	return (bp + 50) / 100
}

func datePremiumReason(f DateFactor) string {
	switch {
	case f.Peak && f.Weekend:
		return "Temporada alta + fin de semana"
	case f.Weekend:
		return "Fin de semana"
	default:
		return "Temporada alta"
	}
}

var serviceLabels = map[ServiceLevel]string{
	ServiceSelf:           "setup autoservicio",
	ServiceBartender:      "bartender profesional",
	ServiceFullExperience: "experiencia completa",
}

var styleLabels = map[CocktailStyle]string{
	StyleClassic:   "Cocktails clásicos",
	StyleSignature: "Cocktails de autor",
	StyleMocktail:  "Mocktails premium",
	StyleCustom:    "Recetas personalizadas",
}

// AvailableExtras lists the catalog in declaration order.
func (c *Calculator) AvailableExtras() []Extra {
	return append([]Extra(nil), c.rates.Extras...)
}

// HasExtra reports whether id is in the catalog.
func (c *Calculator) HasExtra(id string) bool {
	_, ok := c.extras[id]
	return ok
}
