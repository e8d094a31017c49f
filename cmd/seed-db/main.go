package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/pos-terminal/internal/seed"
	"github.com/xenking/pos-terminal/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		productsFile string
		clientsFile  string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file, optionally .gz")
	flag.StringVar(&clientsFile, "clients-file", "db/seed/clients.json", "path to clients JSON file, optionally .gz; empty skips clients")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, clientsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, clientsFile string) error {
	slog.Info("reading fixtures",
		slog.String("products", productsFile),
		slog.String("clients", clientsFile),
	)
	fx, err := seed.Load(ctx, productsFile, clientsFile)
	if err != nil {
		return errors.Wrap(err, "read fixtures")
	}

	slog.Info("connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("upserting products", slog.Int("count", len(fx.Products)))
	if err := postgres.NewProductRepository(pool).Upsert(ctx, fx.Products); err != nil {
		return errors.Wrap(err, "seed products")
	}

	slog.Info("upserting clients", slog.Int("count", len(fx.Clients)))
	if err := postgres.NewClientRepository(pool).Upsert(ctx, fx.Clients); err != nil {
		return errors.Wrap(err, "seed clients")
	}

	return nil
}
