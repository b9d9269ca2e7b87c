package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// Hostname is the public base URL used to build links in outgoing mail.
	Hostname string `env:"HOSTNAME, default=http://localhost:8080"`

	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
	Push  PushConfig
	RTC   RTCConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=calling_api"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST, default=localhost"`
	Port     string `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	Sender   string `env:"SMTP_SENDER, default=no-reply@visioncall.app"`
}

type PushConfig struct {
	Endpoint  string        `env:"PUSH_ENDPOINT"`
	ServerKey string        `env:"PUSH_SERVER_KEY"`
	Timeout   time.Duration `env:"PUSH_TIMEOUT, default=10s"`
	Workers   int           `env:"PUSH_WORKERS, default=8"`
}

type RTCConfig struct {
	Secret   string        `env:"RTC_SECRET"`
	TokenTTL time.Duration `env:"RTC_TOKEN_TTL, default=1h"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
