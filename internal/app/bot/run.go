package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	orderdiscord "github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/discord"
	ordershttp "github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/http"
	ordersmemory "github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/observability"
	ordersjson "github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/persistence/jsonfile"
	orderspostgres "github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/discord-order-bot/internal/domains/orders/application"
	ordersports "github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
	"github.com/Apurer/discord-order-bot/internal/platform/clock"
	platformdiscord "github.com/Apurer/discord-order-bot/internal/platform/discord"
	platformobservability "github.com/Apurer/discord-order-bot/internal/platform/observability"
	platformpostgres "github.com/Apurer/discord-order-bot/internal/platform/postgres"
)

const serviceName = "discord-order-bot"

// Run boots the order bot: observability, snapshot store, feedback relay,
// Discord gateway and the ops HTTP surface. It blocks until ctx is done.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
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

	snapshots, cleanupSnapshots := buildSnapshotStore(ctx, cfg, logger)
	defer cleanupSnapshots()

	session, err := platformdiscord.New(cfg.DiscordToken)
	if err != nil {
		return err
	}
	systemClock := clock.NewSystem()
	notifier := orderdiscord.NewOwnerNotifier(session, cfg.OwnerID, systemClock)

	var relay ordersports.FeedbackRelay = ordersworkflows.NewInlineFeedbackRelay(notifier)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, relaying feedback inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		relay = ordersworkflows.NewTemporalFeedbackRelay(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	coreService := ordersapp.NewService(
		cfg.OwnerID,
		ordersmemory.NewRepository(),
		snapshots,
		orderdiscord.NewAnnouncer(session),
		relay,
		ordersapp.WithLogger(instruments.ComponentLogger("orders.application")),
		ordersapp.WithClock(systemClock),
		ordersapp.WithPersistenceObserver(ordersobs.NewPersistenceObserver(
			instruments.Meter("internal.orders.persistence"), logger)),
	)
	orderService := ordersobs.New(
		coreService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	logger.Info("orders restored from snapshot", slog.Int("count", orderService.Restore(ctx)))

	readiness := &ordershttp.Readiness{}
	handler := orderdiscord.NewHandler(orderService, orderdiscord.WithHandlerLogger(instruments.ComponentLogger("orders.discord")))
	session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		handler.Handle(ctx, s, ic.Interaction)
	})
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		onReady(ctx, s, r, cfg.GuildID, logger)
		readiness.Set(true)
	})
	session.AddHandler(func(*discordgo.Session, *discordgo.Resumed) { readiness.Set(true) })
	session.AddHandler(func(*discordgo.Session, *discordgo.Disconnect) { readiness.Set(false) })

	if err := session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close discord session", slog.String("error", err.Error()))
		}
	}()

	serverErr := make(chan error, 1)
	if cfg.HTTPAddr != "" {
		server := newOpsServer(cfg.HTTPAddr, ordershttp.NewAPI(orderService, readiness))
		go func() {
			logger.Info("ops API listening", slog.String("addr", cfg.HTTPAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err := <-serverErr:
		logger.Error("ops API server exited", slog.String("addr", cfg.HTTPAddr), slog.String("error", err.Error()))
		return err
	}
}

func onReady(ctx context.Context, s *discordgo.Session, r *discordgo.Ready, configuredGuild string, logger *slog.Logger) {
	if r.User == nil {
		logger.Error("ready event without bot user, commands not registered")
		return
	}
	logger.Info("logged in", slog.String("user", r.User.Username))
	guildID := platformdiscord.TargetGuild(configuredGuild, r)
	if guildID == "" {
		logger.Warn("no guild available, commands not registered")
		return
	}
	if err := platformdiscord.RegisterCommands(ctx, s, r.User.ID, guildID, orderdiscord.Commands()); err != nil {
		logger.Error("failed to register commands", slog.String("guild", guildID), slog.String("error", err.Error()))
		return
	}
	logger.Info("commands registered", slog.String("guild", guildID))
}

func buildSnapshotStore(ctx context.Context, cfg Config, logger *slog.Logger) (ordersports.SnapshotStore, func()) {
	if cfg.PostgresDSN == "" {
		logger.Info("orders persisted to JSON file", slog.String("path", cfg.OrdersFile))
		return ordersjson.NewStore(cfg.OrdersFile), func() {}
	}
	db, cleanup := platformpostgres.ConnectAndMigrate(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		logger.Info("orders persisted to JSON file", slog.String("path", cfg.OrdersFile))
		return ordersjson.NewStore(cfg.OrdersFile), cleanup
	}
	logger.Info("orders persisted to postgres")
	return orderspostgres.NewSnapshotStore(db), cleanup
}

func newOpsServer(addr string, api *ordershttp.API) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	api.Register(router)
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer("temporal-client"),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
