package pricing

import "fmt"

const (
	MinGuests = 15
	// MaxSelfServeGuests is the largest event quoted without talking to the
	// team first.
	MaxSelfServeGuests = 500
)

// ValidationResult is what the quoting form shows before pricing.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
	// RequiresDirectContact is set when the event is too large for a
	// self-serve quote; callers route the customer to the sales team.
	RequiresDirectContact bool `json:"requiresDirectContact,omitempty"`
}

// Validate checks a possibly incomplete input. Zero values count as missing.
func (c *Calculator) Validate(in QuoteInput) ValidationResult {
	errs := []string{}
	res := ValidationResult{}

	switch {
	case in.EventType == "":
		errs = append(errs, "Tipo de evento requerido")
	case !in.EventType.Valid():
		errs = append(errs, fmt.Sprintf("Tipo de evento no válido: %s", in.EventType))
	}
	if in.GuestCount < MinGuests {
		errs = append(errs, fmt.Sprintf("Mínimo %d invitados", MinGuests))
	}
	if in.GuestCount > MaxSelfServeGuests {
		errs = append(errs, fmt.Sprintf("Para eventos de más de %d personas, contáctanos directamente", MaxSelfServeGuests))
		res.RequiresDirectContact = true
	}
	switch {
	case in.CocktailStyle == "":
		errs = append(errs, "Estilo de cocktails requerido")
	case !in.CocktailStyle.Valid():
		errs = append(errs, fmt.Sprintf("Estilo de cocktails no válido: %s", in.CocktailStyle))
	}
	switch {
	case in.ServiceLevel == "":
		errs = append(errs, "Nivel de servicio requerido")
	case !in.ServiceLevel.Valid():
		errs = append(errs, fmt.Sprintf("Nivel de servicio no válido: %s", in.ServiceLevel))
	}
	for _, id := range UniqueExtras(in.Extras) {
		if !c.HasExtra(id) {
			errs = append(errs, fmt.Sprintf("Extra no disponible: %s", id))
		}
	}

	res.Errors = errs
	res.Valid = len(errs) == 0
	return res
}

// ValidateQuote validates with the default rate tables.
func ValidateQuote(in QuoteInput) ValidationResult {
	return defaultCalculator.Validate(in)
}
