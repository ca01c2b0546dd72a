package application

import (
	"fmt"
	"sync"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	"github.com/Apurer/discord-order-bot/internal/platform/clock"
)

// IDGenerator allocates order identifiers of the form order_<unix-millis>.
// Two calls within the same millisecond get consecutive values.
type IDGenerator struct {
	mu    sync.Mutex
	clock clock.Clock
	last  int64
}

func NewIDGenerator(c clock.Clock) *IDGenerator {
	if c == nil {
		c = clock.NewSystem()
	}
	return &IDGenerator{clock: c}
}

// Seed makes sure future identifiers sort after the given ones.
func (g *IDGenerator) Seed(ids ...domain.ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		var millis int64
		if _, err := fmt.Sscanf(string(id), "order_%d", &millis); err == nil && millis > g.last {
			g.last = millis
		}
	}
}

func (g *IDGenerator) Next() domain.ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock.Now().UnixMilli()
	if now <= g.last {
		now = g.last + 1
	}
	g.last = now
	return domain.ID(fmt.Sprintf("order_%d", now))
}
