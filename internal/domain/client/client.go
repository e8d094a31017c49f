// Package client holds the customer directory a ticket can be attributed to.
package client

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested client does not exist.
var ErrNotFound = errors.New("client not found")

// GenericName labels sales without an attached client.
const GenericName = "Generic customer"

// Client is a customer record. Only ID and Name matter to the sale engine.
type Client struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// Directory defines read operations over known clients.
type Directory interface {
	List(ctx context.Context) ([]Client, error)
	GetByID(ctx context.Context, id string) (*Client, error)
}

// DisplayName returns the receipt label for c, falling back to GenericName.
func DisplayName(c *Client) string {
	if c == nil || c.Name == "" {
		return GenericName
	}
	return c.Name
}

var _ Directory = (*MemoryDirectory)(nil)

// MemoryDirectory is an immutable in-memory Directory.
type MemoryDirectory struct {
	items []Client
	byID  map[string]int
}

// NewMemoryDirectory indexes clients by ID.
func NewMemoryDirectory(clients []Client) (*MemoryDirectory, error) {
	d := &MemoryDirectory{
		items: slices.Clone(clients),
		byID:  make(map[string]int, len(clients)),
	}
	for i, c := range d.items {
		if c.ID == "" {
			return nil, errors.Errorf("client %d: empty id", i)
		}
		if _, ok := d.byID[c.ID]; ok {
			return nil, errors.Errorf("duplicate client id %q", c.ID)
		}
		d.byID[c.ID] = i
	}
	return d, nil
}

func (d *MemoryDirectory) List(_ context.Context) ([]Client, error) {
	return slices.Clone(d.items), nil
}

func (d *MemoryDirectory) GetByID(_ context.Context, id string) (*Client, error) {
	i, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := d.items[i]
	return &c, nil
}
