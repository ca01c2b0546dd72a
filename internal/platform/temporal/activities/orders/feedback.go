package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
)

// DeliverFeedbackActivityName sends claimant feedback to the owner.
const DeliverFeedbackActivityName = "orders.activities.DeliverFeedback"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	notifier ports.OwnerNotifier
}

func NewActivities(notifier ports.OwnerNotifier) *Activities {
	return &Activities{notifier: notifier}
}

// DeliverFeedback pushes one feedback message to the owner.
func (a *Activities) DeliverFeedback(ctx context.Context, feedback domain.Feedback) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.notifier == nil {
		logger.Error("feedback activity not initialized", "orderId", feedback.OrderID)
		return errors.New("feedback activity not initialized")
	}
	logger.Info("DeliverFeedback activity started", "orderId", feedback.OrderID)
	if err := a.notifier.NotifyOwner(ctx, feedback); err != nil {
		logger.Error("DeliverFeedback activity failed", "orderId", feedback.OrderID, "error", err)
		return err
	}
	logger.Info("DeliverFeedback activity completed", "orderId", feedback.OrderID)
	return nil
}
