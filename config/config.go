package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	AppName    string `envconfig:"APP_NAME"    default:"ShopHub"`
	AppVersion string `envconfig:"APP_VERSION" default:"1.0.0"`
	Port       string `envconfig:"PORT"        default:":8080"`
	LogLevel   string `envconfig:"LOG_LEVEL"   default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret          string `envconfig:"JWT_SECRET_KEY" required:"true"`
	TokenExpiryMinutes int    `envconfig:"ACCESS_TOKEN_EXPIRE_MINUTES" default:"10080"`

	// RedisAddr is optional; when empty the checkout idempotency
	// guard is disabled.
	RedisAddr           string `envconfig:"REDIS_ADDR" default:""`
	IdempotencyTTLHours int    `envconfig:"IDEMPOTENCY_TTL_HOURS" default:"24"`

	CORSOrigins []string `envconfig:"BACKEND_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:8000"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		err = envconfig.Process("", &config)
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: App=%s v%s, Port=%s, LogLevel=%s", config.AppName, config.AppVersion, config.Port, config.LogLevel)
		if config.RedisAddr == "" {
			logger.Info("REDIS_ADDR not set, checkout idempotency guard disabled")
		}
	})
	return &config
}

func GetConfig() *Config {
	if config.DatabaseURL == "" {
		log.Fatal("Configuration not loaded. Call LoadConfig first.")
	}
	return &config
}
