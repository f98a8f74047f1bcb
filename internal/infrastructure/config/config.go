package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	JWTSecret   string `env:"JWT_SECRET"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	FrontendURL string `env:"FRONTEND_URL, default=http://localhost:5173"`

	Mongo MongoConfig
	Redis RedisConfig
	OMDB  OMDBConfig
	SES   SESConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=cineapp"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type OMDBConfig struct {
	APIKey  string `env:"OMDB_API_KEY"`
	BaseURL string `env:"OMDB_BASE_URL, default=https://www.omdbapi.com/"`
}

type SESConfig struct {
	Region    string `env:"AWS_REGION,     default=us-east-1"`
	FromEmail string `env:"SES_FROM_EMAIL"`
	FromName  string `env:"SES_FROM_NAME,  default=CineApp Support"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Production reports whether the service runs with production hardening
// (secure cookies).
func (c *Config) Production() bool {
	return c.Env == "production"
}
