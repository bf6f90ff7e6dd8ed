package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/popuptinybar/tinybar/internal/pricing"
	"github.com/popuptinybar/tinybar/internal/repositories"
)

type QuoteRepository struct {
	pool *pgxpool.Pool
}

func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

var quoteColumns = []string{
	"id", "customer_id", "customer_name", "customer_email", "customer_phone",
	"event_type", "event_date", "guest_count", "venue_address",
	"cocktail_style", "service_level", "extras",
	"base_price", "per_person_price", "extras_price", "subtotal", "tax", "total_price",
	"special_requests", "status", "created_at", "updated_at",
}

var selectQuote = `SELECT ` + strings.Join(quoteColumns, ", ") + ` FROM quotes`

func quoteValues(q *models.Quote) []interface{} {
	return []interface{}{
		q.ID,
		nullable(q.CustomerID),
		q.CustomerName,
		q.CustomerEmail,
		q.CustomerPhone,
		string(q.EventType),
		q.EventDate,
		q.GuestCount,
		nullable(q.VenueAddress),
		string(q.CocktailStyle),
		string(q.ServiceLevel),
		extrasOrEmpty(q.Extras),
		q.BasePrice,
		q.PerPersonPrice,
		q.ExtrasPrice,
		q.Subtotal,
		q.Tax,
		q.Total,
		nullable(q.SpecialRequests),
		string(q.Status),
		q.CreatedAt,
		q.UpdatedAt,
	}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *models.Quote) error {
	placeholders := make([]string, len(quoteColumns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO quotes (%s) VALUES (%s)",
		strings.Join(quoteColumns, ", "),
		strings.Join(placeholders, ", "),
	)
	_, err := r.pool.Exec(ctx, query, quoteValues(quote)...)
	return mapError(err)
}

// BulkCreate loads quotes with COPY inside a single transaction.
func (r *QuoteRepository) BulkCreate(ctx context.Context, quotes []*models.Quote) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"quotes"},
		quoteColumns,
		pgx.CopyFromSlice(len(quotes), func(i int) ([]interface{}, error) {
			return quoteValues(quotes[i]), nil
		}),
	)
	if err != nil {
		return mapError(err)
	}
	return tx.Commit(ctx)
}

func (r *QuoteRepository) GetByID(ctx context.Context, id string) (*models.Quote, error) {
	return scanQuote(r.pool.QueryRow(ctx, selectQuote+` WHERE id = $1`, id))
}

func (r *QuoteRepository) List(ctx context.Context, filter models.QuoteFilter) ([]*models.Quote, error) {
	query := selectQuote
	var args []interface{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := []*models.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, id string, status models.QuoteStatus, at time.Time) (*models.Quote, error) {
	query := `UPDATE quotes SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + strings.Join(quoteColumns, ", ")
	return scanQuote(r.pool.QueryRow(ctx, query, id, string(status), at))
}

func (r *QuoteRepository) ExpirePending(ctx context.Context, cutoff, at time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
        UPDATE quotes SET status = $1, updated_at = $2
        WHERE status = $3 AND created_at < $4`,
		string(models.QuoteStatusExpired), at, string(models.QuoteStatusPending), cutoff,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *QuoteRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM quotes").Scan(&count)
	return count, err
}

func (r *QuoteRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE quotes")
	return err
}

func scanQuote(row pgx.Row) (*models.Quote, error) {
	var (
		q                                   models.Quote
		customerID, venue, special          *string
		eventType, style, level, statusText string
	)
	err := row.Scan(
		&q.ID,
		&customerID,
		&q.CustomerName,
		&q.CustomerEmail,
		&q.CustomerPhone,
		&eventType,
		&q.EventDate,
		&q.GuestCount,
		&venue,
		&style,
		&level,
		&q.Extras,
		&q.BasePrice,
		&q.PerPersonPrice,
		&q.ExtrasPrice,
		&q.Subtotal,
		&q.Tax,
		&q.Total,
		&special,
		&statusText,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	q.CustomerID = deref(customerID)
	q.VenueAddress = deref(venue)
	q.SpecialRequests = deref(special)
	q.EventType = pricing.EventType(eventType)
	q.CocktailStyle = pricing.CocktailStyle(style)
	q.ServiceLevel = pricing.ServiceLevel(level)
	q.Status = models.QuoteStatus(statusText)
	return &q, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func extrasOrEmpty(extras []string) []string {
	if extras == nil {
		return []string{}
	}
	return extras
}

var (
	_ repositories.QuoteRepository    = (*QuoteRepository)(nil)
	_ repositories.CustomerRepository = (*CustomerRepository)(nil)
)
