package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
	"github.com/Apurer/discord-order-bot/internal/platform/clock"
)

// Service runs the order state machine: create, claim, and feedback relay.
type Service struct {
	ownerID   string
	repo      ports.Repository
	snapshots ports.SnapshotStore
	announcer ports.Announcer
	relay     ports.FeedbackRelay
	observer  ports.PersistenceObserver
	ids       *IDGenerator
	logger    *slog.Logger

	// saveMu orders snapshot writes so the newest state is written last.
	saveMu sync.Mutex
	// retained holds stored records that failed validation on restore. They
	// are not served but are written back unchanged on every save.
	retained []*domain.Order
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithPersistenceObserver(observer ports.PersistenceObserver) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.ids = NewIDGenerator(c)
	}
}

func NewService(ownerID string, repo ports.Repository, snapshots ports.SnapshotStore, announcer ports.Announcer, relay ports.FeedbackRelay, opts ...Option) *Service {
	s := &Service{
		ownerID:   strings.TrimSpace(ownerID),
		repo:      repo,
		snapshots: snapshots,
		announcer: announcer,
		relay:     relay,
		observer:  noopObserver{},
		ids:       NewIDGenerator(nil),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.observer == nil {
		s.observer = noopObserver{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// CreateOrder announces a new order in the target channel and stores it.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if s.ownerID == "" || input.Actor != s.ownerID {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.ChannelID) == "" {
		return nil, fmt.Errorf("%w: target channel is required", ErrInvalidInput)
	}
	order, err := domain.NewOrder(s.ids.Next(), input.Name, input.Amount, domain.MessageRef{ChannelID: input.ChannelID})
	if err != nil {
		return nil, mapError(err)
	}
	ref, err := s.announcer.Announce(ctx, input.ChannelID, order)
	if err != nil {
		return nil, fmt.Errorf("announce order: %w", err)
	}
	order.Message = ref
	if err := s.repo.Insert(ctx, order); err != nil {
		return nil, err
	}
	s.persist(ctx)
	return order, nil
}

// ClaimOrder gives the order to actor unless someone already holds it.
func (s *Service) ClaimOrder(ctx context.Context, id domain.ID, actor string) (*domain.Order, error) {
	order, err := s.repo.Claim(ctx, id, actor)
	if err != nil {
		return nil, mapError(err)
	}
	s.persist(ctx)
	if err := s.announcer.Refresh(ctx, order); err != nil {
		return nil, fmt.Errorf("refresh announcement: %w", err)
	}
	return order, nil
}

// SubmitFeedback relays feedback to the owner. The order may be unknown; it is
// never modified here.
func (s *Service) SubmitFeedback(ctx context.Context, input ports.SubmitFeedbackInput) error {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return fmt.Errorf("%w: feedback text is required", ErrInvalidInput)
	}
	feedback := domain.Feedback{OrderID: input.OrderID, Author: input.Actor, Text: text}
	order, err := s.repo.GetByID(ctx, input.OrderID)
	switch {
	case err == nil:
		feedback.Order = order
	case errors.Is(err, ports.ErrNotFound):
		s.logger.LogAttrs(ctx, slog.LevelWarn, "feedback for unknown order", slog.String("order.id", string(input.OrderID)))
	default:
		return err
	}
	return s.relay.Relay(ctx, ports.RelayRequest{InteractionID: input.InteractionID, Feedback: feedback})
}

func (s *Service) GetOrder(ctx context.Context, id domain.ID) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}

// Restore seeds the store from the snapshot. Failures leave the store empty
// and are reported, never returned. Invalid records are kept aside so the
// next save does not erase them.
func (s *Service) Restore(ctx context.Context) int {
	orders, err := s.snapshots.Load(ctx)
	if err != nil {
		s.reportFailure(ctx, "load", err)
		orders = nil
	}
	valid := make([]*domain.Order, 0, len(orders))
	var retained []*domain.Order
	ids := make([]domain.ID, 0, len(orders))
	for _, order := range orders {
		if order == nil {
			continue
		}
		ids = append(ids, order.ID)
		if err := order.Validate(); err != nil {
			s.reportFailure(ctx, "restore_invalid", fmt.Errorf("order %q kept unserved: %w", order.ID, err))
			retained = append(retained, order.Clone())
			continue
		}
		valid = append(valid, order)
	}
	if err := s.repo.Replace(ctx, valid); err != nil {
		s.reportFailure(ctx, "restore", err)
		return 0
	}
	s.saveMu.Lock()
	s.retained = retained
	s.saveMu.Unlock()
	s.ids.Seed(ids...)
	return len(valid)
}

func (s *Service) persist(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	orders, err := s.repo.List(ctx)
	if err != nil {
		s.reportFailure(ctx, "snapshot", err)
		return
	}
	if err := s.snapshots.Save(ctx, withRetained(orders, s.retained)); err != nil {
		s.reportFailure(ctx, "save", err)
	}
}

// withRetained appends retained records whose IDs are not live.
func withRetained(live, retained []*domain.Order) []*domain.Order {
	if len(retained) == 0 {
		return live
	}
	seen := make(map[domain.ID]struct{}, len(live))
	for _, order := range live {
		seen[order.ID] = struct{}{}
	}
	out := append(make([]*domain.Order, 0, len(live)+len(retained)), live...)
	for _, order := range retained {
		if _, ok := seen[order.ID]; !ok {
			out = append(out, order.Clone())
		}
	}
	return out
}

func (s *Service) reportFailure(ctx context.Context, op string, err error) {
	s.logger.LogAttrs(ctx, slog.LevelError, "order persistence failed",
		slog.String("op", op), slog.String("error", err.Error()))
	s.observer.PersistenceFailed(ctx, op, err)
}

type noopObserver struct{}

func (noopObserver) PersistenceFailed(context.Context, string, error) {}

var _ ports.Service = (*Service)(nil)
