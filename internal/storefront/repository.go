// Package storefront provides the repository facade: it mediates between the
// remote catalog client and the local cart store, normalizes remote payloads,
// and wraps every catalog outcome in a tagged result. No error crosses this
// boundary; failures are classified and carried inside the result, with the
// cause retained for diagnostics only.
package storefront

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/fakestore-storefront/internal/domain/cart"
	"github.com/xenking/fakestore-storefront/internal/domain/catalog"
	"github.com/xenking/fakestore-storefront/internal/domain/result"
)

// Repository orchestrates catalog fetches and cart mutations.
type Repository struct {
	client catalog.Client
	cart   cart.Store
}

// New constructs a Repository over a catalog client and a cart store.
func New(client catalog.Client, store cart.Store) *Repository {
	return &Repository{client: client, cart: store}
}

// classify maps a catalog client failure onto an error result, mirroring the
// taxonomy in the catalog package: protocol errors keep their status code,
// transport errors are flagged as network problems, anything else is
// unexpected. No retry happens here; that is a caller decision.
func classify[T any](ctx context.Context, err error) result.Result[T] {
	var pe *catalog.ProtocolError
	if errors.As(err, &pe) {
		zctx.From(ctx).Warn("Catalog protocol error",
			zap.Int("status_code", pe.StatusCode), zap.Error(err))
		return result.ErrorCode[T](fmt.Sprintf("HTTP %d %s", pe.StatusCode, pe.Status), err, pe.StatusCode)
	}

	var te *catalog.TransportError
	if errors.As(err, &te) {
		zctx.From(ctx).Warn("Catalog transport error", zap.Error(err))
		return result.Error[T](fmt.Sprintf("Network error: %v", te.Err), err)
	}

	zctx.From(ctx).Error("Catalog unexpected error", zap.Error(err))
	return result.Error[T](fmt.Sprintf("Unexpected error: %v", err), err)
}

// listResult applies the shared output policy for normalized list calls: a
// cleaned result with zero items is Empty, never Success of an empty slice.
func listResult[T any](items []T) result.Result[[]T] {
	if len(items) == 0 {
		return result.Empty[[]T]()
	}
	return result.Success(items)
}

// Products fetches one page of products and normalizes it.
func (r *Repository) Products(ctx context.Context, offset, limit int) result.Result[[]catalog.Product] {
	items, err := r.client.Products(ctx, offset, limit)
	if err != nil {
		return classify[[]catalog.Product](ctx, err)
	}
	return listResult(catalog.NormalizeProducts(items))
}

// ProductDetails fetches a single product. The single-item path is not
// normalized; the details screen shows whatever the remote has.
func (r *Repository) ProductDetails(ctx context.Context, id int64) result.Result[catalog.Product] {
	p, err := r.client.ProductByID(ctx, id)
	if err != nil {
		return classify[catalog.Product](ctx, err)
	}
	return result.Success(p)
}

// Categories fetches and normalizes all categories.
func (r *Repository) Categories(ctx context.Context) result.Result[[]catalog.Category] {
	items, err := r.client.Categories(ctx)
	if err != nil {
		return classify[[]catalog.Category](ctx, err)
	}
	return listResult(catalog.NormalizeCategories(items))
}

// ProductsByCategory fetches products within a category, normalized like the
// main product list. A nil page lets the remote apply its defaults.
func (r *Repository) ProductsByCategory(ctx context.Context, categoryID int64, page *catalog.PageQuery) result.Result[[]catalog.Product] {
	items, err := r.client.ProductsByCategory(ctx, categoryID, page)
	if err != nil {
		return classify[[]catalog.Product](ctx, err)
	}
	return listResult(catalog.NormalizeProducts(items))
}

// AddToCart copies the product's identity into a cart line (first image, or
// "" when it has none) and delegates to the store's add-or-increment.
func (r *Repository) AddToCart(ctx context.Context, p catalog.Product) error {
	return r.cart.UpsertIncrement(ctx, cart.Line{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		ImageURL:  p.FirstImage(),
		Quantity:  1,
	})
}

// IncrementCart raises the quantity of an existing line by one. A missing
// line is not fatal; the affected count is discarded like the caller would.
func (r *Repository) IncrementCart(ctx context.Context, productID int64) error {
	_, err := r.cart.Increment(ctx, productID, 1)
	return err
}

// DecrementCart lowers the quantity by one, deleting the line at zero.
func (r *Repository) DecrementCart(ctx context.Context, productID int64) error {
	return r.cart.DecrementOrDelete(ctx, productID, 1)
}

// RemoveFromCart deletes the line regardless of quantity.
func (r *Repository) RemoveFromCart(ctx context.Context, productID int64) error {
	return r.cart.Delete(ctx, productID)
}

// ClearCart empties the cart.
func (r *Repository) ClearCart(ctx context.Context) error {
	return r.cart.Clear(ctx)
}

// ObserveCart returns the live snapshot stream of all cart lines, in
// insertion order.
func (r *Repository) ObserveCart(ctx context.Context) (<-chan []cart.Line, error) {
	return r.cart.ObserveAll(ctx)
}
