package ports

import (
	"context"
	"errors"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
)

var (
	ErrNotFound  = errors.New("order not found")
	ErrDuplicate = errors.New("order already exists")
)

// Repository is the in-process order store. Claim must check and set atomically.
type Repository interface {
	Insert(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id domain.ID) (*domain.Order, error)
	Claim(ctx context.Context, id domain.ID, claimant string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	// Replace swaps the whole content of the store, used when restoring a snapshot.
	Replace(ctx context.Context, orders []*domain.Order) error
}

// SnapshotStore mirrors the full order mapping to durable storage.
// Save always rewrites the complete mapping.
type SnapshotStore interface {
	Load(ctx context.Context) ([]*domain.Order, error)
	Save(ctx context.Context, orders []*domain.Order) error
}

// PersistenceObserver is told about every snapshot operation that failed.
type PersistenceObserver interface {
	PersistenceFailed(ctx context.Context, op string, err error)
}
