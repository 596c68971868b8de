package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"APP_PORT" envDefault:"8080"`

	DBHost       string `env:"DB_HOST" envDefault:"localhost"`
	DBPort       string `env:"DB_PORT" envDefault:"5432"`
	DBUser       string `env:"DB_USER" envDefault:"postgres"`
	DBPassword   string `env:"DB_PASSWORD"`
	DBName       string `env:"DB_NAME" envDefault:"railway"`
	DBMaxRetries int    `env:"DB_MAX_RETRIES" envDefault:"10"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// RabbitMQURL left empty disables event publication.
	RabbitMQURL string `env:"RABBITMQ_URL"`

	SweepInterval  time.Duration `env:"SWEEP_INTERVAL" envDefault:"2m"`
	SweepThreshold time.Duration `env:"SWEEP_THRESHOLD" envDefault:"10m"`
	SweepBatchSize int           `env:"SWEEP_BATCH_SIZE" envDefault:"100"`
	SweepLeaseTTL  time.Duration `env:"SWEEP_LEASE_TTL" envDefault:"1m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads the optional dotenv files and then the process environment.
// Variables already set in the environment take precedence.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SweepBatchSize <= 0 {
		return Config{}, fmt.Errorf("SWEEP_BATCH_SIZE must be positive, got %d", cfg.SweepBatchSize)
	}
	if cfg.SweepInterval <= 0 || cfg.SweepThreshold <= 0 {
		return Config{}, errors.New("SWEEP_INTERVAL and SWEEP_THRESHOLD must be positive")
	}
	return cfg, nil
}
