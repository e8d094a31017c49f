package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-terminal/internal/domain/ticket"
)

// Catalog sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (POS_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (POS_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Catalog     CatalogConfig
	Pricing     PricingConfig
	Scanner     ScannerConfig
	Terminals   TerminalsConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// CatalogConfig selects where products and clients come from.
type CatalogConfig struct {
	Source       string `default:"file" usage:"Catalog source: file or postgres"`
	ProductsFile string `default:"db/seed/products.json" usage:"Products JSON, optionally gzipped" flag:"products-file"`
	ClientsFile  string `default:"db/seed/clients.json" usage:"Clients JSON, optionally gzipped" flag:"clients-file"`
}

// PricingConfig is parsed into a ticket.Policy.
type PricingConfig struct {
	TaxRate string `default:"0.21" usage:"Tax rate applied to the subtotal" flag:"tax-rate"`
	Places  int32  `default:"2" usage:"Decimal places shown for money"`
}

// ScannerConfig tunes the barcode scanner heuristic.
type ScannerConfig struct {
	Gap time.Duration `default:"100ms" usage:"Longest pause between keystrokes of one scan" flag:"scan-gap"`
}

// TerminalsConfig bounds the live terminal sessions.
type TerminalsConfig struct {
	MaxSessions int           `default:"256" usage:"Maximum live terminal sessions" flag:"max-sessions"`
	IdleAfter   time.Duration `default:"15m" usage:"Unused time after which an empty session may be dropped" flag:"session-idle"`
}

// RateLimitConfig controls the per-client token bucket rate limiter.
type RateLimitConfig struct {
	Rate  float64 `default:"50" usage:"Sustained requests per second per client"`
	Burst int     `default:"100" usage:"Requests a client may send at once"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then applies platform defaults and validates the result.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "POS",
		Files:     []string{"config.yaml", "/etc/pos/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceFile:
		if c.Catalog.ProductsFile == "" {
			return errors.New("products file is required for the file catalog")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required: set POS_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	if c.Scanner.Gap <= 0 {
		return errors.Errorf("scanner gap must be positive, got %s", c.Scanner.Gap)
	}
	if c.Terminals.MaxSessions <= 0 {
		return errors.Errorf("max sessions must be positive, got %d", c.Terminals.MaxSessions)
	}
	if c.RateLimit.Rate <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit rate and burst must be positive")
	}
	_, err := c.Policy()
	return err
}

// Policy parses the pricing configuration.
func (c *Config) Policy() (ticket.Policy, error) {
	rate, err := decimal.NewFromString(c.Pricing.TaxRate)
	if err != nil {
		return ticket.Policy{}, errors.Wrapf(err, "parse tax rate %q", c.Pricing.TaxRate)
	}
	p := ticket.Policy{TaxRate: rate, Places: c.Pricing.Places}
	if err := p.Validate(); err != nil {
		return ticket.Policy{}, err
	}
	return p, nil
}

// applyPlatformDefaults maps platform-provided DATABASE_URL and PORT to the
// POS_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
