package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/persistence/jsonfile"
)

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for _, key := range []string{
		"DISCORD_TOKEN", "OWNER_ID", "GUILD_ID", "ORDERS_FILE", "POSTGRES_DSN",
		"HTTP_ADDR", "TEMPORAL_ADDRESS", "TEMPORAL_NAMESPACE", "TEMPORAL_DISABLED",
	} {
		t.Setenv(key, values[key])
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"DISCORD_TOKEN": "token", "OWNER_ID": " 42 "})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "42", cfg.OwnerID)
	assert.Empty(t, cfg.GuildID)
	assert.Equal(t, jsonfile.DefaultPath, cfg.OrdersFile)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, client.DefaultHostPort, cfg.TemporalAddress)
	assert.Equal(t, client.DefaultNamespace, cfg.TemporalNamespace)
	assert.False(t, cfg.TemporalDisabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"DISCORD_TOKEN":     "token",
		"OWNER_ID":          "42",
		"GUILD_ID":          "G",
		"ORDERS_FILE":       "/tmp/orders.json",
		"HTTP_ADDR":         "OFF",
		"TEMPORAL_DISABLED": "yes",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "G", cfg.GuildID)
	assert.Equal(t, "/tmp/orders.json", cfg.OrdersFile)
	assert.Empty(t, cfg.HTTPAddr)
	assert.True(t, cfg.TemporalDisabled)
}

func TestLoadConfig_RequiresTokenAndOwner(t *testing.T) {
	setEnv(t, nil)

	_, err := LoadConfig()
	require.ErrorIs(t, err, ErrMissingToken)
	require.ErrorIs(t, err, ErrMissingOwner)
}
