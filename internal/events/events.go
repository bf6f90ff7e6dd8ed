// Package events publishes quote lifecycle events to an OutputDestination
// (Kafka, console or export files).
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/popuptinybar/tinybar/internal/pricing"
	"github.com/rs/zerolog"
)

type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// Event is the wire envelope. Timestamp is unix seconds and drives file
// partitioning.
type Event struct {
	ID         string                    `json:"eventId"`
	Type       string                    `json:"type"`
	Timestamp  int64                     `json:"timestamp"`
	Quote      *models.Quote             `json:"quote"`
	Breakdown  *pricing.PricingBreakdown `json:"breakdown,omitempty"`
	PrevStatus models.QuoteStatus        `json:"previousStatus,omitempty"`
}

func NewEvent(eventType string, quote *models.Quote, at time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: at.Unix(),
		Quote:     quote,
	}
}

func (ev Event) Marshal() ([]byte, error) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", ev.Type, err)
	}
	return msg, nil
}

func Decode(msg []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Quote == nil {
		return Event{}, fmt.Errorf("event %s has no quote", ev.ID)
	}
	return ev, nil
}

// Emitter serialises events and writes them to a destination under
// "<prefix>.<type>" topics.
type Emitter struct {
	dest   OutputDestination
	prefix string
	logger zerolog.Logger
}

func NewEmitter(dest OutputDestination, topicPrefix string, logger zerolog.Logger) *Emitter {
	return &Emitter{dest: dest, prefix: strings.TrimSuffix(topicPrefix, "."), logger: logger}
}

func (e *Emitter) Topic(eventType string) string {
	if e.prefix == "" {
		return eventType
	}
	return e.prefix + "." + eventType
}

func (e *Emitter) Publish(ev Event) error {
	if e == nil || e.dest == nil {
		return nil
	}
	msg, err := ev.Marshal()
	if err != nil {
		return err
	}
	topic := e.Topic(ev.Type)
	if err := e.dest.WriteMessage(topic, msg); err != nil {
		return fmt.Errorf("write %s: %w", topic, err)
	}
	e.logger.Debug().Str("topic", topic).Str("event_id", ev.ID).Msg("event published")
	return nil
}

func (e *Emitter) Close() error {
	if e == nil || e.dest == nil {
		return nil
	}
	return e.dest.Close()
}
