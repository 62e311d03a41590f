// Package catalog defines the remote catalog data model, the client contract
// for fetching it, and the normalization rules applied to raw rows before
// anything downstream sees them.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a catalog item as returned by the remote API. Products are
// immutable and never persisted; adding one to the cart copies the relevant
// fields into a cart line.
type Product struct {
	ID          int64
	Title       string
	Price       decimal.Decimal
	Description string
	Images      []string
	Category    *Category
}

// FirstImage returns the first image URL, or "" when the product has none.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Category groups products. Not persisted.
type Category struct {
	ID    int64
	Name  string
	Image string
}

// PageQuery carries optional offset/limit parameters for endpoints where the
// server applies its own defaults when they are absent.
type PageQuery struct {
	Offset int
	Limit  int
}

// Client fetches raw catalog records from the remote store API.
// Implementations return records exactly as received; cleaning is the
// normalizer's job.
type Client interface {
	// Products returns one page of the product collection.
	Products(ctx context.Context, offset, limit int) ([]Product, error)
	// ProductByID returns a single product. Fails with an error matching
	// ErrNotFound when the remote answers 404.
	ProductByID(ctx context.Context, id int64) (Product, error)
	// Categories returns all categories.
	Categories(ctx context.Context) ([]Category, error)
	// ProductsByCategory returns products within a category. A nil page lets
	// the remote apply its default window.
	ProductsByCategory(ctx context.Context, categoryID int64, page *PageQuery) ([]Product, error)
}
