package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	orderdiscord "github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/discord"
	"github.com/Apurer/discord-order-bot/internal/platform/clock"
	platformdiscord "github.com/Apurer/discord-order-bot/internal/platform/discord"
	platformobservability "github.com/Apurer/discord-order-bot/internal/platform/observability"
	orderactivities "github.com/Apurer/discord-order-bot/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/discord-order-bot/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "discord-order-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger
	platformdiscord.BridgeLogger(logger)

	ownerID := strings.TrimSpace(os.Getenv("OWNER_ID"))
	if ownerID == "" {
		logger.Error("OWNER_ID must be set")
		os.Exit(1)
	}
	// REST only: the worker never opens the gateway.
	session, err := platformdiscord.New(os.Getenv("DISCORD_TOKEN"))
	if err != nil {
		logger.Error("failed to create Discord session", slog.String("error", err.Error()))
		os.Exit(1)
	}
	feedbackActivities := orderactivities.NewActivities(orderdiscord.NewOwnerNotifier(session, ownerID, clock.NewSystem()))

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.FeedbackRelayTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.FeedbackRelayWorkflow, workflow.RegisterOptions{Name: orderworkflows.FeedbackRelayWorkflowName})
	w.RegisterActivityWithOptions(feedbackActivities.DeliverFeedback, activity.RegisterOptions{Name: orderactivities.DeliverFeedbackActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.FeedbackRelayTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
