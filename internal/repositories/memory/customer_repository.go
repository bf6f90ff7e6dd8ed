package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/popuptinybar/tinybar/internal/repositories"
)

type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*models.Customer // keyed by email
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{customers: make(map[string]*models.Customer)}
}

func (r *CustomerRepository) GetByEmail(_ context.Context, email string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CustomerRepository) Create(_ context.Context, customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.customers[customer.Email]; exists {
		return repositories.ErrDuplicate
	}
	r.insert(customer)
	return nil
}

func (r *CustomerRepository) UpsertByEmail(_ context.Context, customer *models.Customer) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.customers[customer.Email]; ok {
		existing.UpdatedAt = customer.UpdatedAt
		if existing.UpdatedAt.IsZero() {
			existing.UpdatedAt = time.Now().UTC()
		}
		cp := *existing
		return &cp, nil
	}
	r.insert(customer)
	cp := *customer
	return &cp, nil
}

func (r *CustomerRepository) insert(customer *models.Customer) {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}
	if customer.UpdatedAt.IsZero() {
		customer.UpdatedAt = customer.CreatedAt
	}
	cp := *customer
	r.customers[customer.Email] = &cp
}
