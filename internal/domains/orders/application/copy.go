package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
)

// ErrEmptySource stops a copy that would overwrite the target with nothing.
// A missing JSON file loads as empty, so this usually means a wrong path.
var ErrEmptySource = errors.New("source snapshot holds no orders")

// CopySnapshot moves the stored orders from one snapshot store to another.
// Invalid records are rejected so the target never holds state the bot
// would refuse to restore. An empty source is refused unless allowEmpty is set.
func CopySnapshot(ctx context.Context, from, to ports.SnapshotStore, allowEmpty bool) (int, error) {
	orders, err := from.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load source snapshot: %w", err)
	}
	valid := make([]*domain.Order, 0, len(orders))
	for _, order := range orders {
		if order == nil {
			continue
		}
		if err := order.Validate(); err != nil {
			return 0, fmt.Errorf("order %s: %w", order.ID, err)
		}
		valid = append(valid, order)
	}
	if len(valid) == 0 && !allowEmpty {
		return 0, ErrEmptySource
	}
	if err := to.Save(ctx, valid); err != nil {
		return 0, fmt.Errorf("save target snapshot: %w", err)
	}
	return len(valid), nil
}
