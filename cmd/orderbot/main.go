package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Apurer/discord-order-bot/internal/app/bot"
)

func main() {
	cfg, err := bot.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := bot.Run(ctx, cfg); err != nil {
		log.Fatalf("order bot exited: %v", err)
	}
}
