package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Addr: defaultAddr,
		Catalog: CatalogConfig{
			Source:       SourceFile,
			ProductsFile: "db/seed/products.json",
		},
		Pricing: PricingConfig{TaxRate: "0.21", Places: 2},
		Scanner:   ScannerConfig{Gap: 100 * time.Millisecond},
		Terminals: TerminalsConfig{MaxSessions: 256, IdleAfter: 15 * time.Minute},
		RateLimit: RateLimitConfig{Rate: 50, Burst: 100},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "Valid", mutate: func(*Config) {}},
		{
			name:    "UnknownSource",
			mutate:  func(c *Config) { c.Catalog.Source = "s3" },
			wantErr: `unknown catalog source "s3"`,
		},
		{
			name:    "PostgresWithoutURL",
			mutate:  func(c *Config) { c.Catalog.Source = SourcePostgres },
			wantErr: "database URL is required",
		},
		{
			name: "PostgresWithURL",
			mutate: func(c *Config) {
				c.Catalog.Source = SourcePostgres
				c.DatabaseURL = "postgres://localhost/pos"
			},
		},
		{
			name:    "NoProductsFile",
			mutate:  func(c *Config) { c.Catalog.ProductsFile = "" },
			wantErr: "products file is required",
		},
		{
			name:    "ZeroGap",
			mutate:  func(c *Config) { c.Scanner.Gap = 0 },
			wantErr: "scanner gap must be positive",
		},
		{
			name:    "NoSessions",
			mutate:  func(c *Config) { c.Terminals.MaxSessions = 0 },
			wantErr: "max sessions must be positive",
		},
		{
			name:    "ZeroRateLimit",
			mutate:  func(c *Config) { c.RateLimit.Burst = 0 },
			wantErr: "rate limit rate and burst must be positive",
		},
		{
			name:   "UntaxedWholeUnits",
			mutate: func(c *Config) { c.Pricing = PricingConfig{TaxRate: "0", Places: 0} },
		},
		{
			name:    "BadTaxRate",
			mutate:  func(c *Config) { c.Pricing.TaxRate = "twenty" },
			wantErr: "parse tax rate",
		},
		{
			name:    "TaxRateOutOfRange",
			mutate:  func(c *Config) { c.Pricing.TaxRate = "1.5" },
			wantErr: "must be in [0, 1)",
		},
		{
			name:    "TooManyPlaces",
			mutate:  func(c *Config) { c.Pricing.Places = 9 },
			wantErr: "rounding places",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Policy(t *testing.T) {
	cfg := validConfig()
	cfg.Pricing = PricingConfig{TaxRate: "0.10", Places: 3}
	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.1").Equal(p.TaxRate))
	assert.Equal(t, int32(3), p.Places)
}

func TestConfig_PlatformDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://platform/pos")
	t.Setenv("PORT", "9090")

	cfg := validConfig()
	cfg.applyPlatformDefaults()
	assert.Equal(t, "postgres://platform/pos", cfg.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)

	cfg = validConfig()
	cfg.Addr = "127.0.0.1:7000"
	cfg.DatabaseURL = "postgres://explicit/pos"
	cfg.applyPlatformDefaults()
	assert.Equal(t, "postgres://explicit/pos", cfg.DatabaseURL)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
}
