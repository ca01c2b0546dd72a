package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is the process-wide order store. Callers only ever see clones.
type Repository struct {
	mu     sync.RWMutex
	orders map[domain.ID]*domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: map[domain.ID]*domain.Order{}}
}

func (r *Repository) Insert(_ context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[clone.ID]; exists {
		return ports.ErrDuplicate
	}
	r.orders[clone.ID] = clone
	return nil
}

func (r *Repository) GetByID(_ context.Context, id domain.ID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

// Claim checks and sets the claim under the write lock, so at most one caller wins.
func (r *Repository) Claim(_ context.Context, id domain.ID, claimant string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if err := order.Claim(claimant); err != nil {
		return nil, err
	}
	return order.Clone(), nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		list = append(list, order.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *Repository) Replace(_ context.Context, orders []*domain.Order) error {
	next := make(map[domain.ID]*domain.Order, len(orders))
	for _, order := range orders {
		if order == nil {
			continue
		}
		if _, exists := next[order.ID]; exists {
			return ports.ErrDuplicate
		}
		next[order.ID] = order.Clone()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = next
	return nil
}
