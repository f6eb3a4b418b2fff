package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Поддерживаемые драйверы хранилища
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// MinTokenTTL минимально допустимое время жизни сессионного токена
const MinTokenTTL = time.Minute

type HTTPConfig struct {
	Port           int           `yaml:"port" env:"PORT" env-default:"5000"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"10s"`
	AllowedOrigins []string      `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:","`
	// TrustedProxies адреса или CIDR прокси, которым разрешено передавать X-Forwarded-For
	TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES" env-separator:","`
}

// TrustedProxyPrefixes разбирает TrustedProxies. Одиночный адрес становится префиксом /32 или /128.
func (c HTTPConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	URL    string `yaml:"url" env:"DATABASE_URL,MONGO_URI" env-required:"true"`
	// Name используется только драйвером mongo
	Name string `yaml:"name" env:"DATABASE_NAME" env-default:"taskkeeper"`
}

type AuthConfig struct {
	JWTSecret               string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL                time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"2h"`
	RevocationPruneInterval time.Duration `yaml:"revocation_prune_interval" env:"REVOCATION_PRUNE_INTERVAL" env-default:"10m"`
	RateLimit               int           `yaml:"rate_limit" env:"AUTH_RATE_LIMIT" env-default:"20"`
	RateWindow              time.Duration `yaml:"rate_window" env:"AUTH_RATE_WINDOW" env-default:"1m"`
}

// S3Config настройки публикации календарей. Пустой Bucket отключает публикацию.
type S3Config struct {
	Bucket    string        `yaml:"bucket" env:"S3_BUCKET"`
	Region    string        `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	Endpoint  string        `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey string        `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string        `yaml:"secret_key" env:"S3_SECRET_KEY"`
	LinkTTL   time.Duration `yaml:"link_ttl" env:"S3_LINK_TTL" env-default:"24h"`
}

// Enabled сообщает, настроена ли публикация календарей
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type Config struct {
	LogLevel  string         `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	LogFormat string         `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
	HTTP      HTTPConfig     `yaml:"http"`
	Database  DatabaseConfig `yaml:"database"`
	Auth      AuthConfig     `yaml:"auth"`
	S3        S3Config       `yaml:"s3"`
}

// Load читает конфигурацию.
// Если путь пустой - только env. Если файла нет - тоже env.
// Переменные окружения перекрывают значения из файла.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read env: %w", err)
		}
	} else if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("cannot read config %q: %w", configPath, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет согласованность значений после загрузки
func (c *Config) Validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q: want sqlite, postgres or mongo", c.Database.Driver)
	}

	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL < MinTokenTTL {
		return fmt.Errorf("TOKEN_TTL must be at least %s, got %s", MinTokenTTL, c.Auth.TokenTTL)
	}
	if c.Auth.RevocationPruneInterval <= 0 {
		return errors.New("REVOCATION_PRUNE_INTERVAL must be positive")
	}
	if c.Auth.RateLimit <= 0 || c.Auth.RateWindow <= 0 {
		return errors.New("AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be positive")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.HTTP.Port)
	}
	if c.HTTP.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if _, err := c.HTTP.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if c.S3.Enabled() && c.S3.LinkTTL < time.Minute {
		return fmt.Errorf("S3_LINK_TTL must be at least 1m, got %s", c.S3.LinkTTL)
	}
	return nil
}

// Addr адрес для http.Server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTP.Port)
}
