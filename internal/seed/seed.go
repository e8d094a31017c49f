// Package seed reads catalog and client fixtures from JSON files. Files ending
// in .gz are decompressed transparently.
package seed

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/pos-terminal/internal/domain/client"
	"github.com/xenking/pos-terminal/internal/domain/product"
)

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Category string          `json:"category"`
}

type clientJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// DecodeProducts parses a JSON array of products.
func DecodeProducts(r io.Reader) ([]product.Product, error) {
	var raw []productJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}
	out := make([]product.Product, len(raw))
	for i, p := range raw {
		if p.Price.IsNegative() {
			return nil, errors.Errorf("product %s: negative price %s", p.ID, p.Price)
		}
		out[i] = product.Product{
			ID:       p.ID,
			Name:     p.Name,
			SKU:      p.SKU,
			Price:    p.Price,
			Stock:    p.Stock,
			Category: p.Category,
		}
	}
	return out, nil
}

// DecodeClients parses a JSON array of clients.
func DecodeClients(r io.Reader) ([]client.Client, error) {
	var raw []clientJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "parse clients JSON")
	}
	out := make([]client.Client, len(raw))
	for i, c := range raw {
		out[i] = client.Client(c)
	}
	return out, nil
}

// ReadProducts reads products from path.
func ReadProducts(path string) ([]product.Product, error) {
	var out []product.Product
	err := withFile(path, func(r io.Reader) (err error) {
		out, err = DecodeProducts(r)
		return err
	})
	return out, err
}

// ReadClients reads clients from path. An empty path yields no clients.
func ReadClients(path string) ([]client.Client, error) {
	if path == "" {
		return nil, nil
	}
	var out []client.Client
	err := withFile(path, func(r io.Reader) (err error) {
		out, err = DecodeClients(r)
		return err
	})
	return out, err
}

// Fixtures is the data set read by Load.
type Fixtures struct {
	Products []product.Product
	Clients  []client.Client
}

// Load reads both files concurrently.
func Load(ctx context.Context, productsPath, clientsPath string) (*Fixtures, error) {
	var f Fixtures

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		f.Products, err = ReadProducts(productsPath)
		return errors.Wrapf(err, "read %s", productsPath)
	})
	g.Go(func() (err error) {
		f.Clients, err = ReadClients(clientsPath)
		return errors.Wrapf(err, "read %s", clientsPath)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &f, nil
}

func withFile(path string, fn func(r io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	if !strings.HasSuffix(path, ".gz") {
		return fn(f)
	}

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()
	return fn(gz)
}
