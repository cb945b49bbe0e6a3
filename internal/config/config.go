package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	BotToken    string `validate:"required"`
	AdminIDs    map[int64]struct{}
	AdminChatID int64
	ChannelID   string
	ChannelURL  string `validate:"omitempty,url"`
	SupportLink string `validate:"omitempty,url"`

	// Amounts are in kopecks.
	MinWithdrawal int64 `validate:"gt=0"`
	ReferralBonus int64 `validate:"gte=0"`

	PostgresDSN string

	RedisAddr     string `validate:"required,hostname_port"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	SessionTTLHours  int `validate:"gt=0"`
	BroadcastWorkers int `validate:"gt=0,lte=64"`
	BroadcastRate    int `validate:"gt=0"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	redisHost := getEnv("REDIS_HOST", "localhost")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := &Config{
		BotToken:         strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		AdminIDs:         ParseAdminIDs(os.Getenv("ADMIN_USER_IDS")),
		AdminChatID:      getEnvInt64("ADMIN_CHAT_ID", 0),
		ChannelID:        strings.TrimSpace(os.Getenv("CHANNEL_ID")),
		ChannelURL:       strings.TrimSpace(os.Getenv("CHANNEL_URL")),
		SupportLink:      strings.TrimSpace(os.Getenv("SUPPORT_LINK")),
		MinWithdrawal:    getEnvInt64("MIN_WITHDRAWAL_AMOUNT", 10000),
		ReferralBonus:    getEnvInt64("REFERRAL_BONUS", 50),
		PostgresDSN:      strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:        fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		SessionTTLHours:  getEnvInt("SESSION_TTL_HOURS", 24),
		BroadcastWorkers: getEnvInt("BROADCAST_WORKERS", 4),
		BroadcastRate:    getEnvInt("BROADCAST_RATE", 25),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) IsAdmin(userID int64) bool {
	if c == nil || userID == 0 {
		return false
	}
	_, ok := c.AdminIDs[userID]
	return ok
}

// ParseAdminIDs accepts ids separated by commas, semicolons or whitespace.
func ParseAdminIDs(raw string) map[int64]struct{} {
	ids := make(map[int64]struct{})
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	for _, f := range fields {
		id, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil || id == 0 {
			log.Printf("Ignoring invalid admin id %q", f)
			continue
		}
		ids[id] = struct{}{}
	}
	return ids
}

func getEnv(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s value, using default: %d", name, def)
		return def
	}
	return n
}

func getEnvInt64(name string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("Invalid %s value, using default: %d", name, def)
		return def
	}
	return n
}
