package config

import (
	"flag"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultRequestTimeout — таймаут HTTP-запроса клиента по умолчанию.
const DefaultRequestTimeout = 30 * time.Second

type Config struct {
	// Client-side settings
	BugreporterURL string        `env:"BUGREPORTER_URL"` // пусто — фиксированный адрес сервиса
	AppleID        string        `env:"APPLE_ID"`
	ApplePassword  string        `env:"APPLE_PASSWORD"`
	ClientDBPath   string        `env:"CLIENT_DB_PATH"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	Version        bool          `env:"-"` // show client version and exit (flag only)

	// Shared settings
	LogLevel    string `env:"LOG_LEVEL"`
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Stub server settings
	DatabaseDSN  string `env:"DATABASE_URI"`
	AuthSecret   string `env:"AUTH_SECRET"`
	SeedUser     string `env:"SEED_USER"`
	SeedPassword string `env:"SEED_PASSWORD"`
	TLSCertFile  string `env:"TLS_CERT_FILE"`
	TLSKeyFile   string `env:"TLS_KEY_FILE"`

	// ServerURL — адрес заглушки, собранный из BaseURL и EnableHTTPS.
	ServerURL string `env:"-"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Client flags
	flag.StringVar(&cfg.BugreporterURL, "url", cfg.BugreporterURL, "override bugreporter base URL (e.g. local stub)")
	flag.StringVar(&cfg.AppleID, "apple-id", cfg.AppleID, "Apple ID used for login")
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "directory for per-account radar caches")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "HTTP request timeout")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")
	// Shared flags
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "stub server address (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS for the stub server")
	// Stub server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.SeedUser, "seed-user", cfg.SeedUser, "Apple ID of the user created at stub start")
	flag.StringVar(&cfg.SeedPassword, "seed-password", cfg.SeedPassword, "password of the seeded user")

	flag.StringVar(&cfg.TLSCertFile, "tls-cert", cfg.TLSCertFile, "TLS certificate file (with -https)")
	flag.StringVar(&cfg.TLSKeyFile, "tls-key", cfg.TLSKeyFile, "TLS key file (with -https)")

	flag.Parse()

	applyDefaults(cfg)
	return cfg
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func applyDefaults(cfg *Config) {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		cfg.LogLevel = "info"
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}
	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}
	cfg.BugreporterURL = strings.TrimRight(strings.TrimSpace(cfg.BugreporterURL), "/")
}
