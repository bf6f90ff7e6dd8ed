package models

import (
	"errors"
	"fmt"
)

var ErrInvalidStatus = errors.New("invalid quote status")

type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusContacted QuoteStatus = "contacted"
	QuoteStatusConverted QuoteStatus = "converted"
	QuoteStatusDeclined  QuoteStatus = "declined"
	QuoteStatusExpired   QuoteStatus = "expired"
)

var QuoteStatuses = []QuoteStatus{
	QuoteStatusPending,
	QuoteStatusContacted,
	QuoteStatusConverted,
	QuoteStatusDeclined,
	QuoteStatusExpired,
}

func (s QuoteStatus) Valid() bool {
	for _, v := range QuoteStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func ParseQuoteStatus(s string) (QuoteStatus, error) {
	st := QuoteStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

const (
	TopicQuoteCreated       = "quote_created"
	TopicQuoteStatusChanged = "quote_status_changed"
	TopicQuotePriced        = "quote_priced"
)
