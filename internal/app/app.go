package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/pos-terminal/internal/domain/client"
	"github.com/xenking/pos-terminal/internal/domain/product"
	"github.com/xenking/pos-terminal/internal/domain/terminal"
	"github.com/xenking/pos-terminal/internal/handler"
	"github.com/xenking/pos-terminal/internal/seed"
	"github.com/xenking/pos-terminal/internal/storage/memory"
	"github.com/xenking/pos-terminal/internal/storage/postgres"
	"github.com/xenking/pos-terminal/pkg/health"
	"github.com/xenking/pos-terminal/pkg/httpmiddleware"
)

// catalog is the read side the terminals sell from.
type catalog struct {
	products product.Repository
	clients  client.Directory
	close    func()
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("catalog", cfg.Catalog.Source),
	)

	policy, err := cfg.Policy()
	if err != nil {
		return errors.Wrap(err, "pricing")
	}

	healthSvc := health.New()
	cat, err := openCatalog(ctx, lg, cfg, healthSvc)
	if err != nil {
		return errors.Wrap(err, "open catalog")
	}
	defer cat.close()

	healthSvc.AddReadinessCheck("catalog", 5*time.Second, health.NonEmptyCheck("products",
		func(ctx context.Context) (int, error) {
			products, err := cat.products.List(ctx)
			return len(products), err
		},
	))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	terminals, err := terminal.NewRegistry(cat.products, cat.clients, memory.NewSaleRepository(), terminal.Options{
		Policy:         &policy,
		ScanGap:        cfg.Scanner.Gap,
		MaxSessions:    cfg.Terminals.MaxSessions,
		IdleAfter:      cfg.Terminals.IdleAfter,
		MeterProvider:  m.MeterProvider(),
		TracerProvider: m.TracerProvider(),
	})
	if err != nil {
		return errors.Wrap(err, "create terminal registry")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(cat.products, cat.clients, terminals).Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				Origins:     cfg.CORS.Origins,
				Headers:     []string{"Content-Type", httpmiddleware.HeaderRequestID},
				Credentials: cfg.CORS.AllowCredentials,
				MaxAge:      86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Rate:  cfg.RateLimit.Rate,
				Burst: cfg.RateLimit.Burst,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("pos-api", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

func openCatalog(ctx context.Context, lg *zap.Logger, cfg *Config, healthSvc *health.Health) (*catalog, error) {
	switch cfg.Catalog.Source {
	case SourcePostgres:
		return openPostgresCatalog(ctx, lg, cfg, healthSvc)
	default:
		return openFileCatalog(ctx, lg, cfg)
	}
}

func openFileCatalog(ctx context.Context, lg *zap.Logger, cfg *Config) (*catalog, error) {
	fx, err := seed.Load(ctx, cfg.Catalog.ProductsFile, cfg.Catalog.ClientsFile)
	if err != nil {
		return nil, err
	}
	products, err := product.NewCatalog(fx.Products)
	if err != nil {
		return nil, errors.Wrap(err, "build catalog")
	}
	clients, err := client.NewMemoryDirectory(fx.Clients)
	if err != nil {
		return nil, errors.Wrap(err, "build client directory")
	}
	lg.Info("Catalog loaded",
		zap.Int("products", products.Len()),
		zap.Int("clients", len(fx.Clients)),
	)
	return &catalog{products: products, clients: clients, close: func() {}}, nil
}

// openPostgresCatalog reads the catalog from PostgreSQL. Scanned codes are
// checked against a bloom filter of the SKUs present at startup, so codes
// added later are found only after a restart.
func openPostgresCatalog(ctx context.Context, lg *zap.Logger, cfg *Config, healthSvc *health.Health) (*catalog, error) {
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "create db pool")
	}
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	products := postgres.NewProductRepository(pool)
	skus, err := products.SKUs(ctx)
	if err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "load skus")
	}
	lg.Info("SKU guard built", zap.Int("skus", len(skus)))

	return &catalog{
		products: product.NewSKUGuard(products, skus, product.DefaultGuardFPR),
		clients:  postgres.NewClientRepository(pool),
		close:    pool.Close,
	}, nil
}
