package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsFixture = `[
  {"id": "p1", "name": "Coffee Beans", "sku": "7790001", "price": "1.20", "stock": 10, "category": "Grocery"},
  {"id": "p2", "name": "Green Tea", "sku": "7790002", "price": 3.10, "stock": -1}
]`

const clientsFixture = `[{"id": "c1", "name": "Ana Torres", "email": "ana@example.com"}]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeGzip(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return path
}

func TestDecodeProducts(t *testing.T) {
	products, err := DecodeProducts(strings.NewReader(productsFixture))
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "7790001", products[0].SKU)
	assert.True(t, decimal.RequireFromString("1.20").Equal(products[0].Price))
	assert.True(t, decimal.RequireFromString("3.10").Equal(products[1].Price))
	assert.Equal(t, -1, products[1].Stock)
	assert.Empty(t, products[1].Category)
}

func TestDecodeProducts_Invalid(t *testing.T) {
	_, err := DecodeProducts(strings.NewReader(`{"id":`))
	require.Error(t, err)

	_, err = DecodeProducts(strings.NewReader(`[{"id":"p1","price":"-1"}]`))
	require.ErrorContains(t, err, "negative price")
}

func TestReadProducts_Gzip(t *testing.T) {
	path := writeGzip(t, "products.json.gz", productsFixture)

	products, err := ReadProducts(path)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestReadClients(t *testing.T) {
	clients, err := ReadClients(writeFile(t, "clients.json", clientsFixture))
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "ana@example.com", clients[0].Email)

	none, err := ReadClients("")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLoad(t *testing.T) {
	f, err := Load(context.Background(),
		writeFile(t, "products.json", productsFixture),
		writeGzip(t, "clients.json.gz", clientsFixture),
	)
	require.NoError(t, err)
	assert.Len(t, f.Products, 2)
	assert.Len(t, f.Clients, 1)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"), "")
	require.ErrorContains(t, err, "nope.json")
}
