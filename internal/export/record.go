// Package export writes quote events as partitioned json, csv or parquet
// files, on local disk or in object storage.
package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/popuptinybar/tinybar/internal/events"
)

// QuoteRecord is the flat row shared by the csv and parquet outputs.
type QuoteRecord struct {
	EventID       string `parquet:"name=event_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	RecordType    string `parquet:"name=record_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Timestamp     int64  `parquet:"name=timestamp, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	QuoteID       string `parquet:"name=quote_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CustomerID    string `parquet:"name=customer_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CustomerName  string `parquet:"name=customer_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	CustomerEmail string `parquet:"name=customer_email, type=BYTE_ARRAY, convertedtype=UTF8"`
	CustomerPhone string `parquet:"name=customer_phone, type=BYTE_ARRAY, convertedtype=UTF8"`
	EventType     string `parquet:"name=event_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	EventDate     string `parquet:"name=event_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	GuestCount    int32  `parquet:"name=guest_count, type=INT32"`
	VenueAddress  string `parquet:"name=venue_address, type=BYTE_ARRAY, convertedtype=UTF8"`
	CocktailStyle string `parquet:"name=cocktail_style, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ServiceLevel  string `parquet:"name=service_level, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Extras        string `parquet:"name=extras, type=BYTE_ARRAY, convertedtype=UTF8"`
	BasePrice     int64  `parquet:"name=base_price, type=INT64"`
	PerPerson     int64  `parquet:"name=per_person_price, type=INT64"`
	ExtrasPrice   int64  `parquet:"name=extras_price, type=INT64"`
	Subtotal      int64  `parquet:"name=subtotal, type=INT64"`
	Tax           int64  `parquet:"name=tax, type=INT64"`
	Total         int64  `parquet:"name=total, type=INT64"`
	Status        string `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CreatedAt     int64  `parquet:"name=created_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	UpdatedAt     int64  `parquet:"name=updated_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

var csvHeader = []string{
	"event_id", "record_type", "timestamp", "quote_id",
	"customer_id", "customer_name", "customer_email", "customer_phone",
	"event_type", "event_date", "guest_count", "venue_address",
	"cocktail_style", "service_level", "extras",
	"base_price", "per_person_price", "extras_price", "subtotal", "tax", "total",
	"status", "created_at", "updated_at",
}

func NewQuoteRecord(ev events.Event) QuoteRecord {
	q := ev.Quote
	r := QuoteRecord{
		EventID:       ev.ID,
		RecordType:    ev.Type,
		Timestamp:     ev.Timestamp * 1000,
		QuoteID:       q.ID,
		CustomerID:    q.CustomerID,
		CustomerName:  q.CustomerName,
		CustomerEmail: q.CustomerEmail,
		CustomerPhone: q.CustomerPhone,
		EventType:     string(q.EventType),
		GuestCount:    int32(q.GuestCount),
		VenueAddress:  q.VenueAddress,
		CocktailStyle: string(q.CocktailStyle),
		ServiceLevel:  string(q.ServiceLevel),
		Extras:        strings.Join(q.Extras, ";"),
		BasePrice:     q.BasePrice,
		PerPerson:     q.PerPersonPrice,
		ExtrasPrice:   q.ExtrasPrice,
		Subtotal:      q.Subtotal,
		Tax:           q.Tax,
		Total:         q.Total,
		Status:        string(q.Status),
		CreatedAt:     q.CreatedAt.UnixMilli(),
		UpdatedAt:     q.UpdatedAt.UnixMilli(),
	}
	if q.EventDate != nil {
		r.EventDate = q.EventDate.Format(time.DateOnly)
	}
	return r
}

func (r QuoteRecord) csvRow() []string {
	i64 := func(v int64) string { return strconv.FormatInt(v, 10) }
	ms := func(v int64) string { return time.UnixMilli(v).UTC().Format(time.RFC3339) }
	return []string{
		r.EventID, r.RecordType, ms(r.Timestamp), r.QuoteID,
		r.CustomerID, r.CustomerName, r.CustomerEmail, r.CustomerPhone,
		r.EventType, r.EventDate, strconv.Itoa(int(r.GuestCount)), r.VenueAddress,
		r.CocktailStyle, r.ServiceLevel, r.Extras,
		i64(r.BasePrice), i64(r.PerPerson), i64(r.ExtrasPrice), i64(r.Subtotal), i64(r.Tax), i64(r.Total),
		r.Status, ms(r.CreatedAt), ms(r.UpdatedAt),
	}
}
