package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	ordersjson "github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/persistence/jsonfile"
	orderspostgres "github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/discord-order-bot/internal/domains/orders/application"
	ordersports "github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/discord-order-bot/internal/platform/postgres"
)

type migrateOptions struct {
	export     bool
	allowEmpty bool
	timeout    time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := migrateOptions{}
	cmd := &cobra.Command{
		Use:   "orders-migrate",
		Short: "Copy stored orders between the JSON file and PostgreSQL",
		Long: `Copies ORDERS_FILE into the orders table at POSTGRES_DSN, or the table back
into the file with --export. The target is overwritten; an empty source is
refused unless --allow-empty is given.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.export, "export", false, "copy postgres into the JSON file instead")
	cmd.Flags().BoolVar(&opts.allowEmpty, "allow-empty", false, "overwrite the target even when the source has no orders")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "deadline for the whole copy")
	return cmd
}

func run(ctx context.Context, opts migrateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectAndMigrate(ctx, os.Getenv("POSTGRES_DSN"), logger)
	defer cleanup()
	if db == nil {
		return fmt.Errorf("POSTGRES_DSN not set or connection failed; cannot copy orders")
	}

	file := ordersjson.NewStore(strings.TrimSpace(os.Getenv("ORDERS_FILE")))
	table := orderspostgres.NewSnapshotStore(db)
	var from, to ordersports.SnapshotStore = file, table
	direction := "file -> postgres"
	if opts.export {
		from, to, direction = table, file, "postgres -> file"
	}

	copied, err := ordersapp.CopySnapshot(ctx, from, to, opts.allowEmpty)
	if err != nil {
		return fmt.Errorf("copy orders (%s): %w", direction, err)
	}
	logger.Info("orders copied", slog.String("direction", direction), slog.String("file", file.Path()), slog.Int("count", copied))
	return nil
}
