package bot

import (
	"errors"
	"os"
	"strings"

	"go.temporal.io/sdk/client"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/persistence/jsonfile"
)

// Config carries environment-driven settings for the bot process.
type Config struct {
	DiscordToken      string
	OwnerID           string
	GuildID           string
	OrdersFile        string
	PostgresDSN       string
	HTTPAddr          string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
}

var (
	ErrMissingToken = errors.New("DISCORD_TOKEN must be set")
	ErrMissingOwner = errors.New("OWNER_ID must be set")
)

// LoadConfig reads environment variables, applies defaults, and validates required values.
func LoadConfig() (Config, error) {
	cfg := Config{
		DiscordToken:      strings.TrimSpace(os.Getenv("DISCORD_TOKEN")),
		OwnerID:           strings.TrimSpace(os.Getenv("OWNER_ID")),
		GuildID:           strings.TrimSpace(os.Getenv("GUILD_ID")),
		OrdersFile:        envDefault("ORDERS_FILE", jsonfile.DefaultPath),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		HTTPAddr:          envDefault("HTTP_ADDR", ":8080"),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}
	if strings.EqualFold(cfg.HTTPAddr, "off") {
		cfg.HTTPAddr = ""
	}
	var errs []error
	if cfg.DiscordToken == "" {
		errs = append(errs, ErrMissingToken)
	}
	if cfg.OwnerID == "" {
		errs = append(errs, ErrMissingOwner)
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
