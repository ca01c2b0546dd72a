package ports

import (
	"context"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
)

// CreateOrderInput is the payload of the order creation command.
type CreateOrderInput struct {
	Actor     string
	ChannelID string
	Name      string
	Amount    int64
}

// SubmitFeedbackInput is the payload of a feedback form submission.
type SubmitFeedbackInput struct {
	InteractionID string
	OrderID       domain.ID
	Actor         string
	Text          string
}

// Service exposes order use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	ClaimOrder(ctx context.Context, id domain.ID, actor string) (*domain.Order, error)
	SubmitFeedback(ctx context.Context, input SubmitFeedbackInput) error
	GetOrder(ctx context.Context, id domain.ID) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	Restore(ctx context.Context) int
}
