package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
)

// Build-time backend credentials, injected with
// -ldflags "-X github.com/MrJamesThe3rd/getrich/internal/config.BackendURL=..."
var (
	BackendURL     string
	BackendAnonKey string
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Get Rich"`
		Host string `envconfig:"HOST" default:"127.0.0.1"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Backend struct {
		URL     string        `envconfig:"BACKEND_URL"`
		AnonKey string        `envconfig:"BACKEND_ANON_KEY"`
		Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
	}

	Store struct {
		Dir string `envconfig:"GETRICH_CONFIG_DIR"`
	}

	Gemini struct {
		APIKey   string `envconfig:"GEMINI_API_KEY"`
		Model    string `envconfig:"GEMINI_MODEL" default:"gemini-3-flash-preview"`
		Endpoint string `envconfig:"GEMINI_ENDPOINT"`
	}

	Insights struct {
		Timeout  time.Duration `envconfig:"INSIGHTS_TIMEOUT" default:"30s"`
		Schedule string        `envconfig:"INSIGHTS_SCHEDULE" default:"0 0 8 * * *"`
		Rate     string        `envconfig:"INSIGHTS_RATE" default:"10-H"`
	}

	Business struct {
		Name        string `envconfig:"BUSINESS_NAME" default:"South Korea Vehicles"`
		Currency    string `envconfig:"CURRENCY" default:"RWF"`
		VATRate     string `envconfig:"VAT_RATE" default:"0.18"`
		EarningRate string `envconfig:"EARNING_RATE" default:"0.21"`
	}

	Notify struct {
		Desktop    bool   `envconfig:"NOTIFY_DESKTOP" default:"true"`
		WebhookURL string `envconfig:"NOTIFY_WEBHOOK_URL"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	}

	DB struct {
		URL string `envconfig:"DATABASE_URL"`
	}
}

// BackendOverride returns the environment or build-time backend configuration.
// Environment values win over values baked into the binary. A half-filled pair
// is returned as is; the accessor ignores incomplete overrides.
func (c *Config) BackendOverride() backend.Config {
	if c.Backend.URL != "" || c.Backend.AnonKey != "" {
		return backend.Config{URL: c.Backend.URL, AnonKey: c.Backend.AnonKey}
	}

	return backend.Config{URL: BackendURL, AnonKey: BackendAnonKey}
}

// Addr is the API listen address. The API acts as the signed-in owner without
// authenticating its callers, so it binds to loopback unless HOST says otherwise.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.App.Host, strconv.Itoa(c.App.Port))
}

// StoreDir is where the local state file lives.
func (c *Config) StoreDir() (string, error) {
	if c.Store.Dir != "" {
		return c.Store.Dir, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}

	return filepath.Join(dir, "getrich"), nil
}

// Rates parses the VAT and earning fractions applied to invoice amounts.
func (c *Config) Rates() (vat, earning decimal.Decimal, err error) {
	vat, err = decimal.NewFromString(c.Business.VATRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("parsing VAT_RATE: %w", err)
	}

	earning, err = decimal.NewFromString(c.Business.EarningRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("parsing EARNING_RATE: %w", err)
	}

	return vat, earning, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
