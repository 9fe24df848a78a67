package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Application status values.  APP_STATUS=0 selects the development database,
// APP_STATUS=1 selects the production DATABASE_URL.
const (
	StatusDevelopment = 0
	StatusProduction  = 1
)

// DatabaseConfig describes how to reach MySQL.  Production deployments set
// DATABASE_URL; development either sets DEV_DATABASE_URL or the individual
// DB_* components.
type DatabaseConfig struct {
	URL    string `env:"DATABASE_URL"`
	DevURL string `env:"DEV_DATABASE_URL"`
	User   string `env:"DB_USER" envDefault:"root"`
	Pass   string `env:"DB_PASS"`
	Host   string `env:"DB_HOST" envDefault:"localhost"`
	Port   string `env:"DB_PORT" envDefault:"3306"`
	Name   string `env:"DB_NAME" envDefault:"casting_agency"`
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	Algorithm     string        `env:"AUTH_ALGORITHM" envDefault:"HS256"` // HS256 or RS256
	Secret        string        `env:"JWT_SECRET"`                        // shared secret for HS256
	PublicKeyFile string        `env:"AUTH_PUBLIC_KEY_FILE"`              // PEM encoded RSA key for RS256
	Issuer        string        `env:"AUTH_ISSUER"`
	Audience      string        `env:"AUTH_AUDIENCE"`
	Leeway        time.Duration `env:"AUTH_LEEWAY" envDefault:"30s"`
}

// EventsConfig configures the RabbitMQ catalog event stream.
type EventsConfig struct {
	URL             string `env:"RABBITMQ_URL"`
	Queue           string `env:"EVENTS_QUEUE" envDefault:"catalog.events"`
	ConsumerEnabled bool   `env:"EVENTS_CONSUMER_ENABLED" envDefault:"false"`
	LogDir          string `env:"EVENTS_LOG_DIR" envDefault:"logs"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	AppStatus   int    `env:"APP_STATUS" envDefault:"0"`
	Port        string `env:"APP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	Database  DatabaseConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Events    EventsConfig
	Metrics   MetricsConfig
}

// Load reads .env files when they exist and parses the environment into a
// Config.  The returned Config has already been validated.
func Load() (Config, error) {
	if err := loadEnvFiles(".env", ".env.local"); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Cache.normalize()
	cfg.RateLimit.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadEnvFiles loads the files that exist and silently skips the others.
// Variables already present in the process environment win.
func loadEnvFiles(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Production reports whether APP_STATUS selects the production database.
func (c Config) Production() bool { return c.AppStatus == StatusProduction }

// Validate rejects combinations of settings the server cannot start with.
func (c Config) Validate() error {
	if c.AppStatus != StatusDevelopment && c.AppStatus != StatusProduction {
		return fmt.Errorf("APP_STATUS must be 0 or 1, got %d", c.AppStatus)
	}
	if c.Production() && strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("DATABASE_URL is required when APP_STATUS=1")
	}
	switch strings.ToUpper(c.Auth.Algorithm) {
	case "HS256":
		if c.Auth.Secret == "" {
			return errors.New("JWT_SECRET is required for AUTH_ALGORITHM=HS256")
		}
	case "RS256":
		if c.Auth.PublicKeyFile == "" {
			return errors.New("AUTH_PUBLIC_KEY_FILE is required for AUTH_ALGORITHM=RS256")
		}
	default:
		return fmt.Errorf("unsupported AUTH_ALGORITHM %q", c.Auth.Algorithm)
	}
	return nil
}

// DSN returns the go-sql-driver/mysql data source name for the database
// selected by APP_STATUS.
func (c Config) DSN() (string, error) {
	if c.Production() {
		return normalizeDSN(c.Database.URL)
	}
	if c.Database.DevURL != "" {
		return normalizeDSN(c.Database.DevURL)
	}
	d := c.Database
	return BuildDSN(d.User, d.Pass, d.Host, d.Port, d.Name), nil
}

// BuildDSN assembles a DSN from its components.
func BuildDSN(user, pass, host, port, name string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, port)
	cfg.DBName = name
	return finalizeDSN(cfg, "")
}

// normalizeDSN accepts either a driver DSN (user:pass@tcp(host:3306)/db) or
// a mysql:// URL and returns a driver DSN.  Query parameters such as tls
// survive in both forms.
func normalizeDSN(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "mysql://") {
		cfg, err := mysql.ParseDSN(raw)
		if err != nil {
			return "", fmt.Errorf("parse database dsn: %w", err)
		}
		query := ""
		if i := strings.LastIndex(raw, "/"); i >= 0 {
			_, query, _ = strings.Cut(raw[i:], "?")
		}
		return finalizeDSN(cfg, query), nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "", errors.New("database url has no database name")
	}
	port := u.Port()
	if port == "" {
		port = "3306"
	}
	// credentials are set after parsing so they never need escaping
	base := fmt.Sprintf("tcp(%s)/%s", net.JoinHostPort(u.Hostname(), port), name)
	if u.RawQuery != "" {
		base += "?" + u.RawQuery
	}
	cfg, err := mysql.ParseDSN(base)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	cfg.User = u.User.Username()
	cfg.Passwd, _ = u.User.Password()
	return finalizeDSN(cfg, u.RawQuery), nil
}

// finalizeDSN forces the settings the repositories rely on: DATE columns
// scan into time.Time and are read and written in UTC.  utf8mb4 is used
// unless query already names a charset.
func finalizeDSN(cfg *mysql.Config, query string) string {
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if params, err := url.ParseQuery(query); err != nil || !params.Has("charset") {
		_ = cfg.Apply(mysql.Charset("utf8mb4", ""))
	}
	return cfg.FormatDSN()
}
