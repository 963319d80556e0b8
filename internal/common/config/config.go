package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port int `env:"PORT" envDefault:"8080"`
		// Origin of the single-page frontend, used both for CORS and to
		// build Telegram deep links back into the app.
		PublicSiteURL string `env:"PUBLIC_SITE_URL" envDefault:"http://localhost:3000"`
	}

	Postgres struct {
		URL string `env:"DATABASE_URL,required"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Auth struct {
		JWTSecret       string `env:"JWT_SECRET,required"`
		TokenHashSecret string `env:"TOKEN_HASH_SECRET,required"`

		WalletSessionTTL   time.Duration `env:"WALLET_SESSION_TTL" envDefault:"24h"`
		TelegramSessionTTL time.Duration `env:"TELEGRAM_SESSION_TTL" envDefault:"1h"`
		LoginTokenTTL      time.Duration `env:"LOGIN_TOKEN_TTL" envDefault:"5m"`
		RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`
	}

	Telegram struct {
		BotToken      string `env:"BOT_TOKEN"`
		WebhookSecret string `env:"TELEGRAM_WEBHOOK_SECRET"`
	}

	Chains struct {
		// Keyed by decimal chain id, e.g.
		// CHAIN_RPC_URLS=10=https://mainnet.optimism.io,56=https://bsc-dataseed.binance.org
		RPCURLs map[int64]string `env:"CHAIN_RPC_URLS" envSeparator:"," envKeyValSeparator:"="`
		// One dedicated signer key per chain. A key is never shared across chains.
		MintSignerKeys map[int64]string `env:"MINT_SIGNER_KEYS" envSeparator:"," envKeyValSeparator:"="`
		MintTag        string           `env:"MINT_TAG" envDefault:"AFA-MINT"`
	}

	Market struct {
		APIBaseURL    string   `env:"MARKET_API_BASE_URL" envDefault:"https://api.coingecko.com/api/v3"`
		CoinIDs       []string `env:"MARKET_COIN_IDS" envSeparator:"," envDefault:"ethereum,optimism,binancecoin"`
		VsCurrency    string   `env:"MARKET_VS_CURRENCY" envDefault:"usd"`
		RefreshSecret string   `env:"CRON_SECRET"`
	}
}

// Load reads .env (if present) and parses the environment. Feature-level
// secrets (bot token, signer keys) are optional here and validated by the
// feature that needs them, so a deployment without Telegram still boots.
func Load() (*Config, error) {
	// Missing .env is fine, variables may be set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
