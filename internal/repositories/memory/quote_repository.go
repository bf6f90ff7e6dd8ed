package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/popuptinybar/tinybar/internal/repositories"
)

type QuoteRepository struct {
	mu     sync.RWMutex
	quotes map[string]*models.Quote
}

func NewQuoteRepository() *QuoteRepository {
	return &QuoteRepository{quotes: make(map[string]*models.Quote)}
}

func (r *QuoteRepository) Create(_ context.Context, quote *models.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.quotes[quote.ID]; exists {
		return repositories.ErrDuplicate
	}
	r.quotes[quote.ID] = clone(quote)
	return nil
}

func (r *QuoteRepository) BulkCreate(_ context.Context, quotes []*models.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range quotes {
		if _, exists := r.quotes[q.ID]; exists {
			return repositories.ErrDuplicate
		}
	}
	for _, q := range quotes {
		r.quotes[q.ID] = clone(q)
	}
	return nil
}

func (r *QuoteRepository) GetByID(_ context.Context, id string) (*models.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quotes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return clone(q), nil
}

func (r *QuoteRepository) List(_ context.Context, filter models.QuoteFilter) ([]*models.Quote, error) {
	r.mu.RLock()
	out := make([]*models.Quote, 0, len(r.quotes))
	for _, q := range r.quotes {
		if filter.Status != "" && q.Status != filter.Status {
			continue
		}
		out = append(out, clone(q))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *QuoteRepository) UpdateStatus(_ context.Context, id string, status models.QuoteStatus, at time.Time) (*models.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	q.Status = status
	q.UpdatedAt = at
	return clone(q), nil
}

func (r *QuoteRepository) ExpirePending(_ context.Context, cutoff, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, q := range r.quotes {
		if q.Status == models.QuoteStatusPending && q.CreatedAt.Before(cutoff) {
			q.Status = models.QuoteStatusExpired
			q.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (r *QuoteRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.quotes), nil
}

func (r *QuoteRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes = make(map[string]*models.Quote)
	return nil
}

func clone(q *models.Quote) *models.Quote {
	cp := *q
	cp.Extras = append([]string(nil), q.Extras...)
	if q.EventDate != nil {
		d := *q.EventDate
		cp.EventDate = &d
	}
	return &cp
}
