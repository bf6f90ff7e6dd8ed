package pricing

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// DiscountTier grants Discount (a fraction) to events with at least MinGuests.
type DiscountTier struct {
	MinGuests int     `yaml:"min_guests" json:"minGuests"`
	Discount  float64 `yaml:"discount" json:"discount"`
}

// Extra is a catalog entry. PerGuest extras are charged once per guest.
type Extra struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	Price    int64  `yaml:"price" json:"price"`
	PerGuest bool   `yaml:"per_guest" json:"perGuest"`
}

// UpgradeRates are the fractions of the event setup fee quoted as the extra
// cost of moving to the next service level.
type UpgradeRates struct {
	ToFullExperience float64 `yaml:"to_full_experience"`
	ToBartender      float64 `yaml:"to_bartender"`
}

// RateTables is the single source of pricing truth.
type RateTables struct {
	Currency           string                   `yaml:"currency"`
	SetupFees          map[EventType]int64      `yaml:"setup_fees"`
	ServiceMultipliers map[ServiceLevel]float64 `yaml:"service_multipliers"`
	PerPerson          map[CocktailStyle]int64  `yaml:"per_person"`
	VolumeDiscounts    []DiscountTier           `yaml:"volume_discounts"`
	Extras             []Extra                  `yaml:"extras"`
	PeakMonths         []time.Month             `yaml:"peak_months"`
	PeakMultiplier     float64                  `yaml:"peak_multiplier"`
	WeekendDays        []time.Weekday           `yaml:"weekend_days"`
	WeekendMultiplier  float64                  `yaml:"weekend_multiplier"`
	TaxRate            float64                  `yaml:"tax_rate"`
	Upgrades           UpgradeRates             `yaml:"upgrades"`
}

// DefaultRates returns a fresh copy of the published MXN price list.
func DefaultRates() RateTables {
	return RateTables{
		Currency: "MXN",
		SetupFees: map[EventType]int64{
			EventWedding:   15000,
			EventCorporate: 12000,
			EventPrivate:   10000,
			EventOther:     10000,
		},
		ServiceMultipliers: map[ServiceLevel]float64{
			ServiceSelf:           0.7,
			ServiceBartender:      1.0,
			ServiceFullExperience: 1.35,
		},
		// 4-6 hours of open bar
		PerPerson: map[CocktailStyle]int64{
			StyleClassic:   320,
			StyleSignature: 420,
			StyleMocktail:  180,
			StyleCustom:    480,
		},
		VolumeDiscounts: []DiscountTier{
			{MinGuests: 150, Discount: 0.15},
			{MinGuests: 100, Discount: 0.12},
			{MinGuests: 75, Discount: 0.08},
			{MinGuests: 50, Discount: 0.05},
		},
		Extras: []Extra{
			{ID: "cans_regalo", Label: "Latas personalizadas de regalo", Price: 45, PerGuest: true},
			{ID: "estacion_garnish", Label: "Estación de garnish premium", Price: 3500},
			{ID: "menu_impreso", Label: "Menús impresos personalizados", Price: 1500},
			{ID: "fotografo", Label: "Fotógrafo de evento", Price: 4500},
			{ID: "setup_premium", Label: "Decoración premium de barra", Price: 5000},
			{ID: "coctelero_extra", Label: "Bartender adicional", Price: 3000},
			{ID: "barra_extra", Label: "Segunda estación de bar", Price: 8000},
			{ID: "mixologia_show", Label: "Show de mixología", Price: 6000},
		},
		PeakMonths:        []time.Month{time.May, time.June, time.December},
		PeakMultiplier:    1.15,
		WeekendDays:       []time.Weekday{time.Friday, time.Saturday, time.Sunday},
		WeekendMultiplier: 1.1,
		TaxRate:           0.16,
		Upgrades: UpgradeRates{
			ToFullExperience: 0.35,
			ToBartender:      0.3,
		},
	}
}

// LoadRates reads a YAML rate file. Keys present in the file replace the
// defaults; map tables are merged key by key, lists are replaced whole.
func LoadRates(path string) (RateTables, error) {
	rates := DefaultRates()
	if path == "" {
		return rates, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RateTables{}, fmt.Errorf("read rates file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rates); err != nil {
		return RateTables{}, fmt.Errorf("parse rates file %s: %w", path, err)
	}
	if err := rates.Validate(); err != nil {
		return RateTables{}, fmt.Errorf("rates file %s: %w", path, err)
	}
	return rates, nil
}

// Validate checks that every enum value has a row and that the numbers make
// sense. A table that fails here must never reach a Calculator.
func (r RateTables) Validate() error {
	for _, e := range EventTypes {
		fee, ok := r.SetupFees[e]
		if !ok {
			return fmt.Errorf("missing setup fee for event type %q", e)
		}
		if fee < 0 {
			return fmt.Errorf("negative setup fee for event type %q", e)
		}
	}
	for _, l := range ServiceLevels {
		m, ok := r.ServiceMultipliers[l]
		if !ok {
			return fmt.Errorf("missing multiplier for service level %q", l)
		}
		if m <= 0 {
			return fmt.Errorf("multiplier for service level %q must be positive", l)
		}
	}
	for _, s := range CocktailStyles {
		rate, ok := r.PerPerson[s]
		if !ok {
			return fmt.Errorf("missing per-person rate for cocktail style %q", s)
		}
		if rate < 0 {
			return fmt.Errorf("negative per-person rate for cocktail style %q", s)
		}
	}
	seenMin := make(map[int]bool, len(r.VolumeDiscounts))
	for _, t := range r.VolumeDiscounts {
		if t.MinGuests < 1 {
			return fmt.Errorf("discount tier minimum %d must be at least 1", t.MinGuests)
		}
		if t.Discount < 0 || t.Discount >= 1 {
			return fmt.Errorf("discount %v for %d guests out of range [0,1)", t.Discount, t.MinGuests)
		}
		if seenMin[t.MinGuests] {
			return fmt.Errorf("duplicate discount tier for %d guests", t.MinGuests)
		}
		seenMin[t.MinGuests] = true
	}
	seenExtra := make(map[string]bool, len(r.Extras))
	for _, x := range r.Extras {
		if x.ID == "" {
			return fmt.Errorf("extra with empty id")
		}
		if seenExtra[x.ID] {
			return fmt.Errorf("duplicate extra %q", x.ID)
		}
		if x.Price < 0 {
			return fmt.Errorf("negative price for extra %q", x.ID)
		}
		seenExtra[x.ID] = true
	}
	for _, m := range r.PeakMonths {
		if m < time.January || m > time.December {
			return fmt.Errorf("invalid peak month %d", m)
		}
	}
	for _, d := range r.WeekendDays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("invalid weekend day %d", d)
		}
	}
	if r.PeakMultiplier < 1 || r.WeekendMultiplier < 1 {
		return fmt.Errorf("date multipliers must be at least 1.0")
	}
	if r.TaxRate < 0 || r.TaxRate >= 1 {
		return fmt.Errorf("tax rate %v out of range [0,1)", r.TaxRate)
	}
	if r.Upgrades.ToFullExperience < 0 || r.Upgrades.ToBartender < 0 {
		return fmt.Errorf("upgrade rates must not be negative")
	}
	return nil
}

// clone deep-copies the table and sorts the discount tiers from the highest
// minimum to the lowest.
func (r RateTables) clone() RateTables {
	out := r
	out.SetupFees = make(map[EventType]int64, len(r.SetupFees))
	for k, v := range r.SetupFees {
		out.SetupFees[k] = v
	}
	out.ServiceMultipliers = make(map[ServiceLevel]float64, len(r.ServiceMultipliers))
	for k, v := range r.ServiceMultipliers {
		out.ServiceMultipliers[k] = v
	}
	out.PerPerson = make(map[CocktailStyle]int64, len(r.PerPerson))
	for k, v := range r.PerPerson {
		out.PerPerson[k] = v
	}
	out.VolumeDiscounts = append([]DiscountTier(nil), r.VolumeDiscounts...)
	sort.SliceStable(out.VolumeDiscounts, func(i, j int) bool {
		return out.VolumeDiscounts[i].MinGuests > out.VolumeDiscounts[j].MinGuests
	})
	out.Extras = append([]Extra(nil), r.Extras...)
	out.PeakMonths = append([]time.Month(nil), r.PeakMonths...)
	out.WeekendDays = append([]time.Weekday(nil), r.WeekendDays...)
	return out
}
