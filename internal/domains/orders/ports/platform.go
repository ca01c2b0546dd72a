package ports

import (
	"context"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
)

// Announcer renders order announcements on the chat platform.
type Announcer interface {
	Announce(ctx context.Context, channelID string, order *domain.Order) (domain.MessageRef, error)
	Refresh(ctx context.Context, order *domain.Order) error
}

// OwnerNotifier delivers private notifications to the owner.
type OwnerNotifier interface {
	NotifyOwner(ctx context.Context, feedback domain.Feedback) error
}

// RelayRequest carries feedback plus the interaction that produced it.
type RelayRequest struct {
	InteractionID string
	Feedback      domain.Feedback
}

// FeedbackRelay hands feedback over to the owner, inline or through a workflow engine.
type FeedbackRelay interface {
	Relay(ctx context.Context, req RelayRequest) error
}
