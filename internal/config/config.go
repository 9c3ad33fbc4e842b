package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	Addr       string
	DBDSN      string
	LogLevel   string
	Latency    time.Duration
	DemoUserID string
	SeedFile   string
	// WSOrigins are extra browser origins allowed to open message streams.
	WSOrigins []string
}

// Load reads an optional .env file (APP_ENV_FILE, default ".env") and then
// the process environment. Variables already set win over the file.
func Load() (Config, error) {
	path := os.Getenv("APP_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := loadDotEnvFile(path, os.Setenv, os.Getenv); err != nil {
		return Config{}, err
	}
	return LoadFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:        getenv("APP_ENV"),
		Addr:       getenv("APP_ADDR"),
		DBDSN:      getenv("APP_DB_DSN"),
		LogLevel:   getenv("APP_LOG_LEVEL"),
		DemoUserID: strings.TrimSpace(getenv("APP_DEMO_USER_ID")),
		SeedFile:   strings.TrimSpace(getenv("APP_SEED_FILE")),
	}

	for _, o := range strings.Split(getenv("APP_WS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.WSOrigins = append(cfg.WSOrigins, o)
		}
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.DemoUserID == "" {
		cfg.DemoUserID = "1"
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	latencyRaw := getenv("APP_LATENCY")
	switch {
	case latencyRaw != "":
		d, err := time.ParseDuration(latencyRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_LATENCY: %w", err)
		}
		if d < 0 {
			return Config{}, errors.New("APP_LATENCY: must be >= 0")
		}
		cfg.Latency = d
	case cfg.Env == "dev":
		cfg.Latency = 500 * time.Millisecond
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func loadDotEnvFile(path string, setenv func(string, string) error, getenv func(string) string) error {
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	for k, v := range vals {
		if v == "" || getenv(k) != "" {
			continue
		}
		if err := setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}
