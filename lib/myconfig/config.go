package myconfig

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server struct {
		Port string `envconfig:"PORT" default:"8080"`
	}
	Client struct {
		BaseURL     string        `envconfig:"API_BASE_URL" default:"http://localhost:8080"`
		AuthBaseURL string        `envconfig:"AUTH_BASE_URL" default:"http://localhost:8080"`
		ClientID    string        `envconfig:"OAUTH_CLIENT_ID" default:"useradmin-frontend"`
		Timeout     time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"5s"`
	}
	Vault struct {
		AccessTokenKey  string `envconfig:"ACCESS_TOKEN_KEY" default:"accessToken"`
		RefreshTokenKey string `envconfig:"REFRESH_TOKEN_KEY" default:"refreshToken"`
		RedisAddr       string `envconfig:"VAULT_REDIS_ADDR"`
		RedisPassword   string `envconfig:"VAULT_REDIS_PASSWORD"`
		RedisDB         int    `envconfig:"VAULT_REDIS_DB" default:"0"`
	}
	Sim struct {
		SigningSecret   string        `envconfig:"SIM_SIGNING_SECRET" default:"dev-only-secret"`
		AccessTokenTTL  time.Duration `envconfig:"SIM_ACCESS_TOKEN_TTL" default:"15m"`
		RefreshTokenTTL time.Duration `envconfig:"SIM_REFRESH_TOKEN_TTL" default:"720h"`
	}
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// a .env file is optional
		log.Printf("No .env file loaded: %s", err)
	}

	cfg := Config{}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing config from environment: %s", err)
	}

	return &cfg, nil
}
