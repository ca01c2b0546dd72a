package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
	orderworkflows "github.com/Apurer/discord-order-bot/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.FeedbackRelay = (*TemporalFeedbackRelay)(nil)
	_ ports.FeedbackRelay = (*InlineFeedbackRelay)(nil)
)

// TemporalFeedbackRelay hands feedback to a Temporal worker and waits for delivery.
type TemporalFeedbackRelay struct {
	client    client.Client
	taskQueue string
}

// NewTemporalFeedbackRelay wires a Temporal client into the relay.
func NewTemporalFeedbackRelay(c client.Client) *TemporalFeedbackRelay {
	return &TemporalFeedbackRelay{client: c, taskQueue: orderworkflows.FeedbackRelayTaskQueue}
}

// Relay starts the feedback workflow. A redelivered interaction joins the run it already started.
func (r *TemporalFeedbackRelay) Relay(ctx context.Context, req ports.RelayRequest) error {
	if r == nil || r.client == nil {
		return errors.New("temporal feedback relay not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildFeedbackWorkflowID(req, traceComponent)
	options := client.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                r.taskQueue,
		WorkflowExecutionTimeout: orderworkflows.FeedbackRelayExecutionTimeout,
	}
	// Started by registered name: the gateway never registers the workflow
	// function, so a function reference would resolve to its Go name.
	run, err := r.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.FeedbackRelayWorkflowName,
		orderworkflows.FeedbackRelayWorkflowInput{Feedback: req.Feedback, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return r.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId).Get(ctx, nil)
		}
		return err
	}
	return run.Get(ctx, nil)
}

// InlineFeedbackRelay notifies the owner directly, without durable orchestration.
type InlineFeedbackRelay struct {
	notifier ports.OwnerNotifier
}

// NewInlineFeedbackRelay wraps the owner notifier for synchronous delivery.
func NewInlineFeedbackRelay(notifier ports.OwnerNotifier) *InlineFeedbackRelay {
	return &InlineFeedbackRelay{notifier: notifier}
}

func (r *InlineFeedbackRelay) Relay(ctx context.Context, req ports.RelayRequest) error {
	if r == nil || r.notifier == nil {
		return errors.New("inline feedback relay not configured")
	}
	return r.notifier.NotifyOwner(ctx, req.Feedback)
}

func buildFeedbackWorkflowID(req ports.RelayRequest, traceComponent string) string {
	if id := strings.TrimSpace(req.InteractionID); id != "" {
		return "order-feedback-" + id
	}
	return fmt.Sprintf("order-feedback-%s-%s", req.Feedback.OrderID, traceComponent)
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
