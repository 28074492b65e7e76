package config

import (
	"flag"
	"os"
	"strings"
	"testing"
	"time"
)

// resetFlagSet создаёт новый FlagSet перед каждым вызовом NewConfig,
// чтобы избежать повторной регистрации одних и тех же флагов между тестами.
func resetFlagSet(t *testing.T) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	// подавляем вывод парсера флагов в тестах
	flag.CommandLine.SetOutput(os.Stderr)
	// go test передаёт свои флаги в os.Args; NewConfig должен видеть только наши
	oldArgs := os.Args
	os.Args = []string{oldArgs[0]}
	t.Cleanup(func() { os.Args = oldArgs })
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BUGREPORTER_URL", "APPLE_ID", "APPLE_PASSWORD", "CLIENT_DB_PATH", "REQUEST_TIMEOUT",
		"LOG_LEVEL", "BASE_URL", "ENABLE_HTTPS", "DATABASE_URI", "AUTH_SECRET", "SEED_USER", "SEED_PASSWORD",
		"TLS_CERT_FILE", "TLS_KEY_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestNewConfig_DefaultsWhenEnvEmpty(t *testing.T) {
	clearEnv(t)
	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.AuthSecret != "dev-secret-key" {
		t.Fatalf("AuthSecret default expected 'dev-secret-key', got %q", cfg.AuthSecret)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Fatalf("RequestTimeout default expected %v, got %v", DefaultRequestTimeout, cfg.RequestTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel default expected 'info', got %q", cfg.LogLevel)
	}
	if cfg.BaseURL != "localhost:8081" {
		t.Fatalf("BaseURL default expected 'localhost:8081', got %q", cfg.BaseURL)
	}
	if cfg.ServerURL != "http://localhost:8081" {
		t.Fatalf("ServerURL default expected 'http://localhost:8081', got %q", cfg.ServerURL)
	}
	if cfg.BugreporterURL != "" {
		t.Fatalf("BugreporterURL must stay empty by default, got %q", cfg.BugreporterURL)
	}
}

func TestNewConfig_ClientEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BUGREPORTER_URL", "http://127.0.0.1:9000/")
	t.Setenv("APPLE_ID", "a@example.com")
	t.Setenv("APPLE_PASSWORD", "pw")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.BugreporterURL != "http://127.0.0.1:9000" {
		t.Fatalf("BugreporterURL expected without trailing slash, got %q", cfg.BugreporterURL)
	}
	if cfg.AppleID != "a@example.com" || cfg.ApplePassword != "pw" {
		t.Fatalf("credentials not read from env: %q/%q", cfg.AppleID, cfg.ApplePassword)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("RequestTimeout expected 5s, got %v", cfg.RequestTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel expected 'debug', got %q", cfg.LogLevel)
	}
}

func TestNewConfig_BaseURLAndHTTPS(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASE_URL", "example.com:443")
	t.Setenv("ENABLE_HTTPS", "true")
	t.Setenv("AUTH_SECRET", "top")
	t.Setenv("SEED_USER", "seed@example.com")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.ServerURL != "https://example.com:443" {
		t.Fatalf("ServerURL expected 'https://example.com:443', got %q", cfg.ServerURL)
	}
	if cfg.AuthSecret != "top" {
		t.Fatalf("AuthSecret expected from env 'top', got %q", cfg.AuthSecret)
	}
	if cfg.SeedUser != "seed@example.com" {
		t.Fatalf("SeedUser expected from env, got %q", cfg.SeedUser)
	}
}

func TestNewConfig_InvalidBaseURLFallback(t *testing.T) {
	clearEnv(t)
	// Невалидный BASE_URL (со схемой) должен откатиться на localhost:8081
	t.Setenv("BASE_URL", "http://bad:8080")
	t.Setenv("ENABLE_HTTPS", "false")
	t.Setenv("LOG_LEVEL", "verbose")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.BaseURL != "localhost:8081" {
		t.Fatalf("invalid BASE_URL must fallback to 'localhost:8081', got %q", cfg.BaseURL)
	}
	if !strings.HasPrefix(cfg.ServerURL, "http://localhost:8081") {
		t.Fatalf("ServerURL must reflect fallback base, got %q", cfg.ServerURL)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unknown LOG_LEVEL must fallback to 'info', got %q", cfg.LogLevel)
	}
}

func TestNewConfig_FlagsOverride(t *testing.T) {
	clearEnv(t)
	resetFlagSet(t)
	os.Args = []string{os.Args[0], "-url", "http://stub:1", "-timeout", "2s", "summaries", "Open"}
	cfg := NewConfig()

	if cfg.BugreporterURL != "http://stub:1" {
		t.Fatalf("flag -url not applied, got %q", cfg.BugreporterURL)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Fatalf("flag -timeout not applied, got %v", cfg.RequestTimeout)
	}
	if got := flag.Args(); len(got) != 2 || got[0] != "summaries" {
		t.Fatalf("positional args expected [summaries Open], got %v", got)
	}
}

func TestNewConfig_TLSFiles(t *testing.T) {
	clearEnv(t)
	resetFlagSet(t)
	t.Setenv("TLS_CERT_FILE", "/etc/stub/cert.pem")
	os.Args = []string{os.Args[0], "-https", "-tls-key", "/etc/stub/key.pem"}

	cfg := NewConfig()
	if cfg.TLSCertFile != "/etc/stub/cert.pem" || cfg.TLSKeyFile != "/etc/stub/key.pem" {
		t.Fatalf("tls files not applied: %q %q", cfg.TLSCertFile, cfg.TLSKeyFile)
	}
	if !strings.HasPrefix(cfg.ServerURL, "https://") {
		t.Fatalf("https server url expected, got %q", cfg.ServerURL)
	}
}
