// Package discord builds discordgo sessions and registers slash commands.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Intents the gateway session subscribes to. Interactions arrive regardless
// of intents; guilds are needed to resolve the fallback guild on READY.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

var ErrMissingToken = errors.New("discord token is required")

// New creates a bot session without opening the gateway.
func New(token string) (*discordgo.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	session, err := discordgo.New("Bot " + strings.TrimPrefix(token, "Bot "))
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = Intents
	return session, nil
}

// RegisterCommands overwrites the guild's command set with cmds.
func RegisterCommands(ctx context.Context, session *discordgo.Session, appID, guildID string, cmds []*discordgo.ApplicationCommand) error {
	if appID == "" || guildID == "" {
		return fmt.Errorf("register commands: application %q guild %q", appID, guildID)
	}
	if _, err := session.ApplicationCommandBulkOverwrite(appID, guildID, cmds, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("register commands in guild %s: %w", guildID, err)
	}
	return nil
}

// TargetGuild returns the configured guild, or the first guild in READY.
func TargetGuild(configured string, ready *discordgo.Ready) string {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	if ready == nil {
		return ""
	}
	for _, guild := range ready.Guilds {
		if guild != nil && guild.ID != "" {
			return guild.ID
		}
	}
	return ""
}

// BridgeLogger routes discordgo's package logger into slog.
func BridgeLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger = logger.With(slog.String("component", "discordgo"))
	discordgo.Logger = func(msgL, _ int, format string, a ...interface{}) {
		logger.Log(context.Background(), slogLevel(msgL), fmt.Sprintf(format, a...))
	}
}

func slogLevel(msgL int) slog.Level {
	switch msgL {
	case discordgo.LogError:
		return slog.LevelError
	case discordgo.LogWarning:
		return slog.LevelWarn
	case discordgo.LogInformational:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
