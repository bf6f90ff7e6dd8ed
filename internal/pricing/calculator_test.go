package pricing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return &t
}

func boolPtr(b bool) *bool { return &b }

func privateClassic(guests int) QuoteInput {
	return QuoteInput{
		EventType:     EventPrivate,
		GuestCount:    guests,
		CocktailStyle: StyleClassic,
		ServiceLevel:  ServiceBartender,
		Extras:        []string{},
	}
}

func sumLines(b *PricingBreakdown) int64 {
	var sum int64
	for _, l := range b.Breakdown {
		sum += l.Amount
	}
	return sum
}

func TestCalculate_ScenarioA_NoDiscount(t *testing.T) {
	got, err := CalculateQuote(privateClassic(30))
	require.NoError(t, err)

	assert.Equal(t, int64(10000), got.BasePrice)
	assert.Equal(t, int64(320), got.PerPersonPrice)
	assert.Equal(t, int64(9600), got.PerPersonTotal)
	assert.Equal(t, int64(0), got.ExtrasPrice)
	assert.Equal(t, int64(19600), got.Subtotal)
	assert.Equal(t, int64(3136), got.Tax)
	assert.Equal(t, int64(22736), got.Total)
	assert.Nil(t, got.Savings)
	assert.Nil(t, got.RecommendedUpgrade)
	assert.Equal(t, 1.0, got.DateMultiplier)

	require.Len(t, got.Breakdown, 3)
	assert.Equal(t, "Setup de Barra Móvil", got.Breakdown[0].Label)
	assert.Equal(t, "Servicio de Cocktails (30 personas)", got.Breakdown[1].Label)
	assert.Equal(t, "$320 por persona • Cocktails clásicos • Barra libre 4-6 horas", got.Breakdown[1].Description)
	assert.Equal(t, LineItem{Label: "IVA (16%)", Amount: 3136}, got.Breakdown[2])
}

func TestCalculate_ScenarioB_VolumeDiscount(t *testing.T) {
	got, err := CalculateQuote(privateClassic(60))
	require.NoError(t, err)

	assert.Equal(t, int64(304), got.PerPersonPrice)
	assert.Equal(t, int64(18240), got.PerPersonTotal)
	require.NotNil(t, got.Savings)
	assert.Equal(t, int64(960), *got.Savings)
	assert.Equal(t, 0.05, got.DiscountRate)
	assert.Equal(t, int64(28240), got.Subtotal)
	assert.Equal(t, int64(4518), got.Tax)
	assert.Equal(t, int64(32758), got.Total)

	require.Len(t, got.Breakdown, 4)
	assert.Equal(t, int64(19200), got.Breakdown[1].Amount)
	assert.Equal(t, "$320 por persona antes de descuento • Cocktails clásicos • Barra libre 4-6 horas",
		got.Breakdown[1].Description)
	assert.Equal(t, LineItem{
		Label:       "Descuento por volumen (5%)",
		Amount:      -960,
		Description: "60 invitados = tarifa preferencial",
	}, got.Breakdown[2])

	require.NotNil(t, got.RecommendedUpgrade)
	assert.Equal(t, ServiceFullExperience, got.RecommendedUpgrade.Level)
	assert.Equal(t, int64(3500), got.RecommendedUpgrade.AdditionalCost)
}

func TestCalculate_ScenarioC_PerGuestExtra(t *testing.T) {
	in := privateClassic(20)
	in.Extras = []string{"cans_regalo"}

	got, err := CalculateQuote(in)
	require.NoError(t, err)

	assert.Equal(t, int64(900), got.ExtrasPrice)
	assert.Equal(t, int64(10000+6400+900), got.Subtotal)
	assert.Equal(t, int64(2768), got.Tax)
	assert.Equal(t, int64(20068), got.Total)

	require.Len(t, got.Breakdown, 4)
	assert.Equal(t, LineItem{
		Label:       "Extras",
		Amount:      900,
		Description: "Latas personalizadas de regalo",
	}, got.Breakdown[2])
}

func TestCalculate_ScenarioD_PeakWeekend(t *testing.T) {
	in := privateClassic(30)
	in.EventDate = date(2026, time.June, 6) // Saturday

	got, err := CalculateQuote(in)
	require.NoError(t, err)

	assert.InDelta(t, 1.265, got.DateMultiplier, 1e-12)
	assert.Equal(t, int64(24794), got.Subtotal)
	assert.Equal(t, int64(3967), got.Tax)
	assert.Equal(t, int64(28761), got.Total)

	premium := got.Breakdown[len(got.Breakdown)-2]
	assert.Equal(t, LineItem{
		Label:       "Fecha premium (+27%)",
		Amount:      5194,
		Description: "Temporada alta + fin de semana",
	}, premium)
}

func TestCalculate_DatePremiums(t *testing.T) {
	tests := []struct {
		name        string
		date        *time.Time
		weekend     *bool
		subtotal    int64
		tax         int64
		label       string
		description string
	}{
		{
			name:     "no date",
			subtotal: 19600,
			tax:      3136,
		},
		{
			name:        "peak weekday",
			date:        date(2026, time.June, 1), // Monday
			subtotal:    22540,
			tax:         3606,
			label:       "Fecha premium (+15%)",
			description: "Temporada alta",
		},
		{
			name:        "weekend override without date",
			weekend:     boolPtr(true),
			subtotal:    21560,
			tax:         3450,
			label:       "Fecha premium (+10%)",
			description: "Fin de semana",
		},
		{
			name:        "off-peak saturday",
			date:        date(2026, time.March, 7),
			subtotal:    21560,
			tax:         3450,
			label:       "Fecha premium (+10%)",
			description: "Fin de semana",
		},
		{
			name:        "off-peak friday",
			date:        date(2026, time.March, 6),
			subtotal:    21560,
			tax:         3450,
			label:       "Fecha premium (+10%)",
			description: "Fin de semana",
		},
		{
			name:     "off-peak thursday",
			date:     date(2026, time.March, 5),
			subtotal: 19600,
			tax:      3136,
		},
		{
			name:     "false override suppresses saturday",
			date:     date(2026, time.March, 7),
			weekend:  boolPtr(false),
			subtotal: 19600,
			tax:      3136,
		},
		{
			name:        "december sunday",
			date:        date(2026, time.December, 6),
			subtotal:    24794,
			tax:         3967,
			label:       "Fecha premium (+27%)",
			description: "Temporada alta + fin de semana",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := privateClassic(30)
			in.EventDate = tt.date
			in.IsWeekend = tt.weekend

			got, err := CalculateQuote(in)
			require.NoError(t, err)
			assert.Equal(t, tt.subtotal, got.Subtotal)
			assert.Equal(t, tt.tax, got.Tax)
			assert.Equal(t, tt.subtotal+tt.tax, got.Total)

			var premium *LineItem
			for i := range got.Breakdown {
				if got.Breakdown[i].Description == tt.description && tt.label != "" {
					premium = &got.Breakdown[i]
				}
			}
			if tt.label == "" {
				assert.Equal(t, int64(19600), got.Subtotal, "no premium expected")
				assert.Len(t, got.Breakdown, 3)
				return
			}
			require.NotNil(t, premium)
			assert.Equal(t, tt.label, premium.Label)
			assert.Equal(t, tt.subtotal-19600, premium.Amount)
		})
	}
}

func TestCalculate_BreakdownReconcilesWithTotal(t *testing.T) {
	in := QuoteInput{
		EventType:     EventWedding,
		GuestCount:    180,
		CocktailStyle: StyleSignature,
		ServiceLevel:  ServiceFullExperience,
		Extras:        []string{"cans_regalo", "fotografo", "mixologia_show"},
		EventDate:     date(2026, time.December, 12),
	}
	got, err := CalculateQuote(in)
	require.NoError(t, err)
	assert.Equal(t, got.Total, sumLines(got))
	assert.Equal(t, "IVA (16%)", got.Breakdown[len(got.Breakdown)-1].Label)
}

func TestCalculate_Invariants(t *testing.T) {
	c := Default()
	dates := []*time.Time{nil, date(2026, time.May, 15), date(2026, time.March, 8), date(2026, time.December, 25)}
	extras := [][]string{nil, {"cans_regalo"}, {"barra_extra", "menu_impreso", "unknown"}}

	for _, e := range EventTypes {
		for _, s := range CocktailStyles {
			for _, l := range ServiceLevels {
				for _, guests := range []int{1, 15, 49, 50, 74, 75, 99, 100, 149, 150, 500} {
					for _, d := range dates {
						for _, x := range extras {
							in := QuoteInput{EventType: e, GuestCount: guests, CocktailStyle: s, ServiceLevel: l, Extras: x, EventDate: d}
							got, err := c.Calculate(in)
							require.NoError(t, err)

							assert.Equal(t, got.Subtotal+got.Tax, got.Total)
							assert.Equal(t, round(float64(got.Subtotal)*0.16), got.Tax)
							assert.Equal(t, got.PerPersonPrice*int64(guests), got.PerPersonTotal)
							assert.Equal(t, got.Total, sumLines(got))
							if got.DateMultiplier == 1.0 {
								assert.Equal(t, got.BasePrice+got.PerPersonTotal+got.ExtrasPrice, got.Subtotal)
							}
						}
					}
				}
			}
		}
	}
}

func TestCalculate_UnitPriceMonotonicInGuests(t *testing.T) {
	c := Default()
	for _, s := range CocktailStyles {
		for _, l := range ServiceLevels {
			prev := int64(-1)
			for guests := 1; guests <= MaxSelfServeGuests; guests++ {
				pp, err := c.PerPerson(s, guests, l)
				require.NoError(t, err)
				if prev >= 0 {
					require.LessOrEqual(t, pp.UnitPrice, prev, "style=%s level=%s guests=%d", s, l, guests)
				}
				prev = pp.UnitPrice
			}
		}
	}
}

func TestCalculate_SavingsBoundary(t *testing.T) {
	below, err := CalculateQuote(privateClassic(49))
	require.NoError(t, err)
	assert.Nil(t, below.Savings)
	assert.Equal(t, int64(320), below.PerPersonPrice)

	at, err := CalculateQuote(privateClassic(50))
	require.NoError(t, err)
	require.NotNil(t, at.Savings)
	assert.Equal(t, int64(800), *at.Savings)
	assert.Equal(t, int64(304), at.PerPersonPrice)
}

func TestCalculate_Idempotent(t *testing.T) {
	in := privateClassic(120)
	in.Extras = []string{"fotografo", "cans_regalo"}
	in.EventDate = date(2026, time.May, 22)
	snapshot := in
	snapshot.Extras = append([]string(nil), in.Extras...)

	first, err := CalculateQuote(in)
	require.NoError(t, err)
	second, err := CalculateQuote(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, in, "input must not be mutated")
}

func TestCalculate_ConcurrentCallers(t *testing.T) {
	in := privateClassic(88)
	want, err := CalculateQuote(in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*PricingBreakdown, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = CalculateQuote(in)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestCalculate_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   QuoteInput
		want error
	}{
		{"zero guests", QuoteInput{EventType: EventPrivate, CocktailStyle: StyleClassic, ServiceLevel: ServiceBartender}, ErrInvalidGuestCount},
		{"unknown event", QuoteInput{EventType: "gala", GuestCount: 20, CocktailStyle: StyleClassic, ServiceLevel: ServiceBartender}, ErrUnknownEventType},
		{"unknown style", QuoteInput{EventType: EventPrivate, GuestCount: 20, CocktailStyle: "tiki", ServiceLevel: ServiceBartender}, ErrUnknownCocktailStyle},
		{"unknown level", QuoteInput{EventType: EventPrivate, GuestCount: 20, CocktailStyle: StyleClassic, ServiceLevel: "butler"}, ErrUnknownServiceLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateQuote(tt.in)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBasePrice(t *testing.T) {
	c := Default()
	tests := []struct {
		event EventType
		level ServiceLevel
		want  int64
	}{
		{EventWedding, ServiceSelf, 10500},
		{EventWedding, ServiceBartender, 15000},
		{EventWedding, ServiceFullExperience, 20250},
		{EventCorporate, ServiceFullExperience, 16200},
		{EventPrivate, ServiceSelf, 7000},
		{EventOther, ServiceBartender, 10000},
	}
	for _, tt := range tests {
		got, err := c.BasePrice(tt.event, tt.level)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s/%s", tt.event, tt.level)
	}
}

func TestPerPerson(t *testing.T) {
	c := Default()
	tests := []struct {
		name   string
		style  CocktailStyle
		guests int
		level  ServiceLevel
		want   PerPersonPricing
	}{
		{"mocktail self service", StyleMocktail, 20, ServiceSelf, PerPersonPricing{ListUnitPrice: 126, UnitPrice: 126}},
		{"signature full experience", StyleSignature, 30, ServiceFullExperience, PerPersonPricing{ListUnitPrice: 567, UnitPrice: 567}},
		{"classic top tier", StyleClassic, 150, ServiceBartender, PerPersonPricing{ListUnitPrice: 320, UnitPrice: 272, Discount: 0.15, Savings: 48 * 150}},
		{"custom 100 guests", StyleCustom, 100, ServiceBartender, PerPersonPricing{ListUnitPrice: 480, UnitPrice: 422, Discount: 0.12, Savings: 58 * 100}},
		{"classic 75 guests", StyleClassic, 75, ServiceBartender, PerPersonPricing{ListUnitPrice: 320, UnitPrice: 294, Discount: 0.08, Savings: 26 * 75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.PerPerson(tt.style, tt.guests, tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVolumeDiscount_HighestQualifyingTier(t *testing.T) {
	rates := DefaultRates()
	// declared lowest first; the calculator must not pick the first match
	rates.VolumeDiscounts = []DiscountTier{
		{MinGuests: 50, Discount: 0.05},
		{MinGuests: 150, Discount: 0.15},
		{MinGuests: 75, Discount: 0.08},
		{MinGuests: 100, Discount: 0.12},
	}
	c, err := NewCalculator(rates)
	require.NoError(t, err)

	assert.Equal(t, 0.0, c.VolumeDiscount(49))
	assert.Equal(t, 0.05, c.VolumeDiscount(50))
	assert.Equal(t, 0.08, c.VolumeDiscount(99))
	assert.Equal(t, 0.12, c.VolumeDiscount(100))
	assert.Equal(t, 0.15, c.VolumeDiscount(400))
}

func TestExtrasTotal(t *testing.T) {
	c := Default()
	assert.Equal(t, int64(0), c.ExtrasTotal(nil, 40))
	assert.Equal(t, int64(45*40), c.ExtrasTotal([]string{"cans_regalo"}, 40))
	assert.Equal(t, int64(3500+8000), c.ExtrasTotal([]string{"estacion_garnish", "barra_extra"}, 400))
	assert.Equal(t, int64(4500), c.ExtrasTotal([]string{"fotografo", "fotografo"}, 40), "duplicates count once")
	assert.Equal(t, int64(1500), c.ExtrasTotal([]string{"nope", "menu_impreso"}, 40), "unknown ids are ignored")
}

func TestRecommendUpgrade(t *testing.T) {
	c := Default()

	up := c.RecommendUpgrade(ServiceBartender, EventCorporate, 50)
	require.NotNil(t, up)
	assert.Equal(t, ServiceFullExperience, up.Level)
	assert.Equal(t, int64(4200), up.AdditionalCost)

	up = c.RecommendUpgrade(ServiceSelf, EventWedding, 20)
	require.NotNil(t, up)
	assert.Equal(t, ServiceBartender, up.Level)
	assert.Equal(t, int64(4500), up.AdditionalCost)

	assert.Nil(t, c.RecommendUpgrade(ServiceBartender, EventCorporate, 49))
	assert.Nil(t, c.RecommendUpgrade(ServiceSelf, EventCorporate, 200))
	for _, e := range EventTypes {
		for _, g := range []int{15, 50, 500} {
			assert.Nil(t, c.RecommendUpgrade(ServiceFullExperience, e, g))
		}
	}
}

func TestLabelsCoverEveryEnumValue(t *testing.T) {
	for _, l := range ServiceLevels {
		assert.NotEmpty(t, serviceLabels[l], "service level %s", l)
	}
	for _, s := range CocktailStyles {
		assert.NotEmpty(t, styleLabels[s], "cocktail style %s", s)
	}
}

func TestAvailableExtras(t *testing.T) {
	extras := Default().AvailableExtras()
	require.Len(t, extras, 8)
	assert.Equal(t, Extra{ID: "cans_regalo", Label: "Latas personalizadas de regalo", Price: 45, PerGuest: true}, extras[0])
	for _, x := range extras[1:] {
		assert.False(t, x.PerGuest, x.ID)
	}

	extras[0].Price = 1
	assert.Equal(t, int64(45), Default().AvailableExtras()[0].Price, "catalog must not be shared")
}

func TestRound_HalfAwayFromZero(t *testing.T) {
	tests := map[float64]int64{
		0.5:    1,
		1.5:    2,
		2.5:    3,
		4518.4: 4518,
		4518.5: 4519,
		-2.5:   -3,
	}
	for in, want := range tests {
		assert.Equal(t, want, round(in), "round(%v)", in)
	}
	// 16% of a whole peso amount never lands on .5, so tax cannot hit the tie.
	for subtotal := int64(0); subtotal < 1000; subtotal++ {
		frac := float64(subtotal*16%100) / 100
		assert.NotEqual(t, 0.5, frac)
	}
}

func TestPremiumPercent(t *testing.T) {
	tests := []struct {
		name string
		m    float64
		want int64
	}{
		{"weekend", 1.1, 10},
		{"peak", 1.15, 15},
		{"peak weekend", 1.1 * 1.15, 27},
		{"half point rounds up", 1.125, 13},
		{"composed from variables", mul(1.15, 1.1), 27},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, premiumPercent(tt.m))
		})
	}
}

// mul keeps the product out of constant folding so it carries float64 error.
func mul(a, b float64) float64 { return a * b }
