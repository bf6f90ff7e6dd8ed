// Package pricing turns an event description into an itemized quote.
//
// The engine is table driven: every amount it produces comes from a RateTables
// value handed to NewCalculator. A Calculator never changes after construction
// and is safe for concurrent use.
package pricing

import (
	"errors"
	"time"
)

type EventType string

const (
	EventWedding   EventType = "wedding"
	EventCorporate EventType = "corporate"
	EventPrivate   EventType = "private"
	EventOther     EventType = "other"
)

// EventTypes lists every event type in presentation order.
var EventTypes = []EventType{EventWedding, EventCorporate, EventPrivate, EventOther}

func (e EventType) Valid() bool {
	switch e {
	case EventWedding, EventCorporate, EventPrivate, EventOther:
		return true
	}
	return false
}

type CocktailStyle string

const (
	StyleClassic   CocktailStyle = "classic"
	StyleSignature CocktailStyle = "signature"
	StyleMocktail  CocktailStyle = "mocktail"
	StyleCustom    CocktailStyle = "custom"
)

var CocktailStyles = []CocktailStyle{StyleClassic, StyleSignature, StyleMocktail, StyleCustom}

func (s CocktailStyle) Valid() bool {
	switch s {
	case StyleClassic, StyleSignature, StyleMocktail, StyleCustom:
		return true
	}
	return false
}

type ServiceLevel string

const (
	ServiceSelf           ServiceLevel = "self_service"
	ServiceBartender      ServiceLevel = "bartender"
	ServiceFullExperience ServiceLevel = "full_experience"
)

var ServiceLevels = []ServiceLevel{ServiceSelf, ServiceBartender, ServiceFullExperience}

func (l ServiceLevel) Valid() bool {
	switch l {
	case ServiceSelf, ServiceBartender, ServiceFullExperience:
		return true
	}
	return false
}

var (
	ErrUnknownEventType     = errors.New("unknown event type")
	ErrUnknownCocktailStyle = errors.New("unknown cocktail style")
	ErrUnknownServiceLevel  = errors.New("unknown service level")
	ErrInvalidGuestCount    = errors.New("guest count must be at least 1")
)

// QuoteInput describes the event being quoted. The calculator reads it and
// never writes to it.
type QuoteInput struct {
	EventType     EventType     `json:"eventType"`
	GuestCount    int           `json:"guestCount"`
	CocktailStyle CocktailStyle `json:"cocktailStyle"`
	ServiceLevel  ServiceLevel  `json:"serviceLevel"`
	Extras        []string      `json:"extras"`
	EventDate     *time.Time    `json:"eventDate,omitempty"`
	IsWeekend     *bool         `json:"isWeekend,omitempty"`
	// Duration in hours. Accepted for completeness, not priced.
	Duration *int `json:"duration,omitempty"`
}

// LineItem is one row of the presentation breakdown. Amount is signed:
// discounts are negative.
type LineItem struct {
	Label       string `json:"label"`
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
}

// Upgrade is an advisory suggestion; it never changes the quoted total.
type Upgrade struct {
	Name           string       `json:"name"`
	Level          ServiceLevel `json:"level"`
	AdditionalCost int64        `json:"additionalCost"`
	Benefit        string       `json:"benefit"`
}

type PricingBreakdown struct {
	BasePrice      int64      `json:"basePrice"`
	PerPersonPrice int64      `json:"perPersonPrice"`
	PerPersonTotal int64      `json:"perPersonTotal"`
	ExtrasPrice    int64      `json:"extrasPrice"`
	Subtotal       int64      `json:"subtotal"`
	Tax            int64      `json:"tax"`
	Total          int64      `json:"total"`
	Breakdown      []LineItem `json:"breakdown"`
	// Savings is nil when no volume discount applied.
	Savings            *int64   `json:"savings,omitempty"`
	DiscountRate       float64  `json:"discountRate"`
	DateMultiplier     float64  `json:"dateMultiplier"`
	RecommendedUpgrade *Upgrade `json:"recommendedUpgrade,omitempty"`
}

// PerPersonPricing is the result of the per-guest step.
type PerPersonPricing struct {
	ListUnitPrice int64   // after the service multiplier, before the volume discount
	UnitPrice     int64   // after the volume discount
	Discount      float64 // fraction, 0 when no tier qualifies
	Savings       int64   // (ListUnitPrice - UnitPrice) * guests
}

// DateFactor records which date premiums applied.
type DateFactor struct {
	Multiplier float64
	Peak       bool
	Weekend    bool
}
