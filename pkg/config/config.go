package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Log    LogConfig
	Engine EngineConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// EngineConfig carries the solver tuning knobs read from the environment.
// The engine itself never reads the environment; the composition root hands
// it a plain configuration record built from these values.
type EngineConfig struct {
	Budget             time.Duration
	Workers            int
	Seed               int64
	MorningPeriodLimit int
	FallbackOrder      []string
	WeightBlock        float64
	WeightGroup        float64
	WeightGap          float64
	WeightMorning      float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// A missing .env is fine, the environment and defaults cover everything.
	// With an explicit config file viper surfaces the raw open error, so the
	// not-exist check is needed alongside its own not-found type.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Engine = EngineConfig{
		Budget:             parseDuration(v.GetString("SEARCH_BUDGET"), 30*time.Second),
		Workers:            v.GetInt("SEARCH_WORKERS"),
		Seed:               v.GetInt64("SEARCH_SEED"),
		MorningPeriodLimit: v.GetInt("MORNING_PERIOD_LIMIT"),
		FallbackOrder:      splitAndTrim(v.GetString("FALLBACK_ORDER")),
		WeightBlock:        v.GetFloat64("WEIGHT_BLOCK"),
		WeightGroup:        v.GetFloat64("WEIGHT_GROUP"),
		WeightGap:          v.GetFloat64("WEIGHT_GAP"),
		WeightMorning:      v.GetFloat64("WEIGHT_MORNING"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SEARCH_BUDGET", "30s")
	v.SetDefault("SEARCH_WORKERS", 4)
	v.SetDefault("SEARCH_SEED", 1)
	v.SetDefault("MORNING_PERIOD_LIMIT", 4)
	v.SetDefault("FALLBACK_ORDER", "DROP_SOFT,RELAX_SOFT_HARD,TRUNCATE")
	v.SetDefault("WEIGHT_BLOCK", 2.0)
	v.SetDefault("WEIGHT_GROUP", 1.0)
	v.SetDefault("WEIGHT_GAP", 3.0)
	v.SetDefault("WEIGHT_MORNING", 1.0)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
