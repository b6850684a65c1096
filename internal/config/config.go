package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"attendance-bot/pkg/holidays"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type BotConfig struct {
	TelegramToken   string
	BaseAdminChatID int64
	BotDebug        bool

	DatabaseDriver string
	DatabaseURL    string

	Location  *time.Location
	GraceDays int

	DetailedStrategy holidays.Strategy
	CompactStrategy  holidays.Strategy

	MetricsAddr string
	LogLevel    logrus.Level
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var instance *BotConfig
var once sync.Once

// GetBotConfig loads .env once and exits the process if the configuration is unusable.
func GetBotConfig() *BotConfig {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Warnf("no .env file loaded: %s", err.Error())
		}

		cfg, err := Load(os.LookupEnv)
		if err != nil {
			logrus.Fatalf("invalid configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load builds the configuration from lookup, usually os.LookupEnv.
func Load(lookup func(string) (string, bool)) (*BotConfig, error) {
	env := envReader{lookup: lookup}
	cfg := &BotConfig{}

	cfg.TelegramToken = env.get("TELEGRAM_BOT_TOKEN", "")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("could not get bot token")
	}

	adminID, err := env.getInt("BASE_ADMIN_CHAT_ID", 0)
	if err != nil {
		return nil, err
	}
	cfg.BaseAdminChatID = adminID

	if cfg.BotDebug, err = env.getBool("BOT_DEBUG", false); err != nil {
		return nil, err
	}

	cfg.DatabaseDriver = strings.ToLower(env.get("DATABASE_DRIVER", DriverSQLite))
	if cfg.DatabaseDriver != DriverSQLite && cfg.DatabaseDriver != DriverPostgres {
		return nil, fmt.Errorf("DATABASE_DRIVER must be %s or %s, got %q", DriverSQLite, DriverPostgres, cfg.DatabaseDriver)
	}

	cfg.DatabaseURL = env.get("DATABASE_URL", "")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("could not get db url")
	}

	cfg.Location, err = time.LoadLocation(env.get("TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	grace, err := env.getInt("HOLIDAY_GRACE_DAYS", holidays.DefaultGraceDays)
	if err != nil {
		return nil, err
	}
	if grace < 0 {
		return nil, fmt.Errorf("HOLIDAY_GRACE_DAYS must not be negative")
	}
	cfg.GraceDays = int(grace)

	if cfg.DetailedStrategy, err = holidays.ParseStrategy(env.get("DETAILED_SELECTION_STRATEGY", string(holidays.StrategyRollover))); err != nil {
		return nil, fmt.Errorf("DETAILED_SELECTION_STRATEGY: %w", err)
	}
	if cfg.CompactStrategy, err = holidays.ParseStrategy(env.get("COMPACT_SELECTION_STRATEGY", string(holidays.StrategyNearestStored))); err != nil {
		return nil, fmt.Errorf("COMPACT_SELECTION_STRATEGY: %w", err)
	}

	cfg.MetricsAddr = env.get("METRICS_ADDR", "")

	if cfg.LogLevel, err = logrus.ParseLevel(env.get("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

type envReader struct {
	lookup func(string) (string, bool)
}

func (e envReader) get(key string, defaultVal string) string {
	if value, exists := e.lookup(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}

	return defaultVal
}

func (e envReader) getBool(name string, defaultVal bool) (bool, error) {
	valStr := e.get(name, "")
	if valStr == "" {
		return defaultVal, nil
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return val, nil
}

func (e envReader) getInt(name string, defaultVal int64) (int64, error) {
	valStr := e.get(name, "")
	if valStr == "" {
		return defaultVal, nil
	}
	val, err := strconv.ParseInt(valStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return val, nil
}
