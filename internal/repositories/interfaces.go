package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/popuptinybar/tinybar/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type CustomerRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
	// UpsertByEmail returns the stored customer for customer.Email, inserting
	// customer when the email is new. Existing contact details are kept.
	UpsertByEmail(ctx context.Context, customer *models.Customer) (*models.Customer, error)
}

type QuoteRepository interface {
	Create(ctx context.Context, quote *models.Quote) error
	BulkCreate(ctx context.Context, quotes []*models.Quote) error
	GetByID(ctx context.Context, id string) (*models.Quote, error)
	// List returns quotes newest first.
	List(ctx context.Context, filter models.QuoteFilter) ([]*models.Quote, error)
	UpdateStatus(ctx context.Context, id string, status models.QuoteStatus, at time.Time) (*models.Quote, error)
	// ExpirePending marks pending quotes created before cutoff as expired and
	// reports how many changed.
	ExpirePending(ctx context.Context, cutoff, at time.Time) (int64, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}
