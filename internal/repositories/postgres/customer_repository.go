package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/popuptinybar/tinybar/internal/models"
)

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `id, name, email, phone, created_at, updated_at`

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	c := &models.Customer{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = $1`, email,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	prepareCustomer(customer)
	_, err := r.pool.Exec(ctx, `
        INSERT INTO customers (id, name, email, phone, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	return mapError(err)
}

func (r *CustomerRepository) UpsertByEmail(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	prepareCustomer(customer)
	c := &models.Customer{}
	err := r.pool.QueryRow(ctx, `
        INSERT INTO customers (id, name, email, phone, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (email) DO UPDATE SET updated_at = EXCLUDED.updated_at
        RETURNING `+customerColumns,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.CreatedAt,
		customer.UpdatedAt,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func prepareCustomer(c *models.Customer) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
}
