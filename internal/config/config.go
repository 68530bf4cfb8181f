package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port          int    `env:"PORT" envDefault:"5000"`
	AppEnv        string `env:"APP_ENV" envDefault:"production"`
	CORSOrigin    string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
	JWTSecret     string `env:"JWT_SECRET" envDefault:"your_jwt_secret"`
	StoreDriver   string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://127.0.0.1:27017"`
	MongoDB       string `env:"MONGO_DB" envDefault:"auth-system"`
	PostgresDSN   string `env:"POSTGRES_DSN"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	Minio Minio `envPrefix:"MINIO_"`
}

// Minio holds object storage parameters for avatar uploads.
type Minio struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET" envDefault:"avatars"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment reports whether error detail may be exposed in responses.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
