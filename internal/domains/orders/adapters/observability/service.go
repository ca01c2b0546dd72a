package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderdomain "github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	orderports "github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input orderports.CreateOrderInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(attribute.String("order.channel_id", input.ChannelID), attribute.Int64("order.amount", input.Amount)))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.String("actor", input.Actor), slog.String("order.channel_id", input.ChannelID))
	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("actor", input.Actor))
	}
	span.SetAttributes(attribute.String("order.id", string(result.ID)))
	s.metrics.recordCreated(ctx)
	s.logInfo(ctx, "order created", slog.String("order.id", string(result.ID)), slog.String("order.message_id", result.Message.MessageID))
	return result, nil
}

func (s *Service) ClaimOrder(ctx context.Context, id orderdomain.ID, actor string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ClaimOrder", trace.WithAttributes(attribute.String("order.id", string(id))))
	defer span.End()

	s.logInfo(ctx, "claiming order", slog.String("order.id", string(id)), slog.String("actor", actor))
	result, err := s.inner.ClaimOrder(ctx, id, actor)
	if err != nil {
		if errors.Is(err, orderdomain.ErrAlreadyClaimed) {
			s.metrics.recordConflict(ctx)
		}
		return nil, s.handleError(ctx, span, err, "failed to claim order", slog.String("order.id", string(id)), slog.String("actor", actor))
	}
	s.metrics.recordClaimed(ctx)
	s.logInfo(ctx, "order claimed", slog.String("order.id", string(result.ID)), slog.String("claimed_by", result.ClaimedBy))
	return result, nil
}

func (s *Service) SubmitFeedback(ctx context.Context, input orderports.SubmitFeedbackInput) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.SubmitFeedback", trace.WithAttributes(attribute.String("order.id", string(input.OrderID))))
	defer span.End()

	s.logInfo(ctx, "relaying feedback", slog.String("order.id", string(input.OrderID)), slog.String("actor", input.Actor))
	if err := s.inner.SubmitFeedback(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to relay feedback", slog.String("order.id", string(input.OrderID)))
	}
	s.metrics.recordFeedback(ctx)
	s.logInfo(ctx, "feedback relayed", slog.String("order.id", string(input.OrderID)))
	return nil
}

func (s *Service) GetOrder(ctx context.Context, id orderdomain.ID) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.String("order.id", string(id))))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", string(id)))
	}
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders")
	defer span.End()

	result, err := s.inner.ListOrders(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) Restore(ctx context.Context) int {
	ctx, span := s.tracer.Start(ctx, "OrderService.Restore")
	defer span.End()

	restored := s.inner.Restore(ctx)
	span.SetAttributes(attribute.Int("orders.restored", restored))
	s.logInfo(ctx, "orders restored", slog.Int("orders.restored", restored))
	return restored
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	ordersCreated   metric.Int64Counter
	ordersClaimed   metric.Int64Counter
	claimConflicts  metric.Int64Counter
	feedbackRelayed metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.orders_created", metric.WithDescription("Number of orders created"))
	ordersClaimed, _ := m.Int64Counter("orders.service.orders_claimed", metric.WithDescription("Number of orders claimed"))
	claimConflicts, _ := m.Int64Counter("orders.service.claim_conflicts", metric.WithDescription("Number of claims rejected because the order was taken"))
	feedbackRelayed, _ := m.Int64Counter("orders.service.feedback_relayed", metric.WithDescription("Number of feedback messages relayed to the owner"))
	return serviceMetrics{
		ordersCreated:   ordersCreated,
		ordersClaimed:   ordersClaimed,
		claimConflicts:  claimConflicts,
		feedbackRelayed: feedbackRelayed,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordClaimed(ctx context.Context) {
	if m.ordersClaimed != nil {
		m.ordersClaimed.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordConflict(ctx context.Context) {
	if m.claimConflicts != nil {
		m.claimConflicts.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordFeedback(ctx context.Context) {
	if m.feedbackRelayed != nil {
		m.feedbackRelayed.Add(ctx, 1)
	}
}

var _ orderports.Service = (*Service)(nil)
