package orders

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	activities "github.com/Apurer/discord-order-bot/internal/platform/temporal/activities/orders"
)

const (
	// FeedbackRelayWorkflowName is the public identifier for registering the workflow.
	FeedbackRelayWorkflowName = "orders.workflows.FeedbackRelay"
	// FeedbackRelayTaskQueue is the queue consumed by the worker relaying feedback.
	FeedbackRelayTaskQueue = "ORDER_FEEDBACK"
	// FeedbackRelayExecutionTimeout bounds a run when no worker picks it up.
	FeedbackRelayExecutionTimeout = time.Minute
)

// FeedbackRelayWorkflowInput carries the feedback to hand to the owner.
type FeedbackRelayWorkflowInput struct {
	Feedback domain.Feedback
	TraceID  string
}

// FeedbackRelayWorkflow delivers one feedback message. Delivery is attempted once.
func FeedbackRelayWorkflow(ctx workflow.Context, input FeedbackRelayWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	orderID := string(input.Feedback.OrderID)
	logger.Info("FeedbackRelayWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	if err := workflow.ExecuteActivity(ctx, activities.DeliverFeedbackActivityName, input.Feedback).Get(ctx, nil); err != nil {
		logger.Error("FeedbackRelayWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return err
	}
	logger.Info("FeedbackRelayWorkflow completed", withTraceID(input.TraceID, "orderId", orderID)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
