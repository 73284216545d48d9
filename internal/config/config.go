package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment (and an
// optional .env file in the working directory).
type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	DB       DB
	Auth     Auth
	Gateway  Gateway
	Frontend string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	RedisAddr      string   `env:"REDIS_ADDR"`
}

type DB struct {
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       uint   `env:"DB_PORT" envDefault:"5432"`
	Name       string `env:"DB_NAME" envDefault:"billing"`
	Username   string `env:"DB_USERNAME"`
	Password   string `env:"DB_PASSWORD"`
	SecretID   string `env:"DB_SECRET_ID"`
	SSLDisable bool   `env:"DB_SSL_MODE_DISABLE" envDefault:"false"`
}

type Auth struct {
	PrivateKeyPath string `env:"AUTH_RSA_PRIVATE_PATH"`
	KID            string `env:"AUTH_KID"`
	Issuer         string `env:"AUTH_ISSUER"`
	Audience       string `env:"AUTH_AUDIENCE"`
	// RetiredKeys maps kid to a PEM public key path, kept verifiable after a
	// rotation until the last token they signed expires.
	RetiredKeys map[string]string `env:"AUTH_RETIRED_PUBLIC_KEYS"`
	// JWKSURL enables tokens signed by an external identity provider.
	JWKSURL string `env:"AUTH_JWKS_URL"`
}

// Gateway defaults point at the Webpay Plus integration environment.
type Gateway struct {
	BaseURL      string        `env:"GATEWAY_BASE_URL" envDefault:"https://webpay3gint.transbank.cl"`
	CommerceCode string        `env:"GATEWAY_COMMERCE_CODE" envDefault:"597055555532"`
	APIKey       string        `env:"GATEWAY_API_KEY" envDefault:"579B532A7440BB0C9079DED94D31EA1615BACEB56610332264630D42D0A36B1C"`
	Timeout      time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"15s"`
	// AcceptMissingCode treats a commit response without response_code as
	// approved. Only meant for sandbox runs.
	AcceptMissingCode bool `env:"GATEWAY_ACCEPT_MISSING_CODE" envDefault:"false"`
}

// Load reads .env (when present) and parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// ReturnURL joins the frontend base with a return path.
func (c Config) ReturnURL(path string) string {
	return strings.TrimRight(c.Frontend, "/") + "/" + strings.TrimLeft(path, "/")
}
