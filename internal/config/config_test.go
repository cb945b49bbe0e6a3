package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdminIDs(t *testing.T) {
	ids := ParseAdminIDs("1, 2;3\n4 bogus 0")
	assert.Len(t, ids, 4)
	for _, id := range []int64{1, 2, 3, 4} {
		assert.Contains(t, ids, id)
	}
	assert.Empty(t, ParseAdminIDs(""))
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminIDs: ParseAdminIDs("10")}
	assert.True(t, cfg.IsAdmin(10))
	assert.False(t, cfg.IsAdmin(11))
	assert.False(t, cfg.IsAdmin(0))

	var nilCfg *Config
	assert.False(t, nilCfg.IsAdmin(10))
}

func TestLoad(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_USER_IDS", "7,8")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("MIN_WITHDRAWAL_AMOUNT", "50000")
	t.Setenv("BROADCAST_WORKERS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.BotToken)
	assert.True(t, cfg.IsAdmin(8))
	assert.Equal(t, "redis:6380", cfg.RedisAddr)
	assert.Equal(t, int64(50000), cfg.MinWithdrawal)
	assert.Equal(t, int64(50), cfg.ReferralBonus)
	assert.Equal(t, 4, cfg.BroadcastWorkers)
	assert.Equal(t, 24, cfg.SessionTTLHours)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("MIN_WITHDRAWAL_AMOUNT", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("MIN_WITHDRAWAL_AMOUNT", "100")
	t.Setenv("CHANNEL_URL", "not a url")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	require.NoError(t, os.WriteFile(path, []byte("SHOP_TEST_A=from-file\nSHOP_TEST_B=from-file\n"), 0o600))

	t.Setenv("SHOP_TEST_B", "from-env")
	t.Cleanup(func() { os.Unsetenv("SHOP_TEST_A") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("SHOP_TEST_A"))
	assert.Equal(t, "from-env", os.Getenv("SHOP_TEST_B"))

	assert.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
	assert.NoError(t, LoadEnvFile(""))
}
