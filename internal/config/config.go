package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"eveningmall/internal/logger"
)

var AppEnv Config

type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	GinMode        string        `env:"GIN_MODE" envDefault:"debug"`
	MongoURI       string        `env:"MONGO_URI,required,notEmpty"`
	DBName         string        `env:"DB_NAME" envDefault:"eveningmall"`
	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`
	EmailSealKey   string        `env:"EMAIL_SEAL_KEY,required,notEmpty"`
	FrontendURL    string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	BackendURL     string        `env:"BACKEND_URL" envDefault:"http://localhost:8080"`
	QueryTimeout   time.Duration `env:"QUERY_TIMEOUT" envDefault:"5s"`

	Log logger.Config `envPrefix:"LOG_"`
}

// Load reads .env (if present) and the process environment into AppEnv.
func Load() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Get("config").WithError(err).Warn(".env not loaded")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if len(cfg.EmailSealKey) < 32 {
		return fmt.Errorf("EMAIL_SEAL_KEY must be at least 32 characters")
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 5 * time.Second
	}

	AppEnv = cfg
	return nil
}
