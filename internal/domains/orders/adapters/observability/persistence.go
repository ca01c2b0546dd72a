package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	orderports "github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
)

var _ orderports.PersistenceObserver = (*PersistenceObserver)(nil)

// PersistenceObserver counts and logs failed snapshot operations.
type PersistenceObserver struct {
	failures metric.Int64Counter
	logger   *slog.Logger
}

func NewPersistenceObserver(m metric.Meter, logger *slog.Logger) *PersistenceObserver {
	o := &PersistenceObserver{logger: logger}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if m != nil {
		o.failures, _ = m.Int64Counter("orders.persistence.failures", metric.WithDescription("Number of failed order snapshot operations"))
	}
	return o
}

func (o *PersistenceObserver) PersistenceFailed(ctx context.Context, op string, err error) {
	if o.failures != nil {
		o.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	}
	attrs := []slog.Attr{slog.String("op", op)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	o.logger.LogAttrs(ctx, slog.LevelWarn, "order snapshot operation failed", attrs...)
}
