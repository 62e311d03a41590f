// Package handler exposes the storefront over HTTP. It is presentation only:
// each endpoint is the server-side analogue of one mobile screen, holding a
// request-scoped view-state holder that loads through the repository and
// renders whatever tagged result comes back.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/xenking/fakestore-storefront/internal/domain/result"
	"github.com/xenking/fakestore-storefront/internal/paging"
	"github.com/xenking/fakestore-storefront/internal/storefront"
	"github.com/xenking/fakestore-storefront/internal/viewstate"
)

// defaultPageLimit matches the page size the product screens request.
const defaultPageLimit = 10

// Handler serves the storefront API.
type Handler struct {
	repo     *storefront.Repository
	pager    *paging.Source
	cartView *viewstate.CartView
}

// NewHandler constructs a Handler over the repository, pagination source,
// and live cart view.
func NewHandler(repo *storefront.Repository, pager *paging.Source, cartView *viewstate.CartView) *Handler {
	return &Handler{repo: repo, pager: pager, cartView: cartView}
}

// Routes returns the API route table.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/page", h.loadProductPage)
	mux.HandleFunc("GET /api/products/{id}", h.productDetails)
	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.HandleFunc("GET /api/categories/{id}/products", h.listProductsByCategory)
	mux.HandleFunc("GET /api/cart", h.cartSnapshot)
	mux.HandleFunc("GET /api/cart/stream", h.cartStream)
	mux.HandleFunc("POST /api/cart/items", h.addToCart)
	mux.HandleFunc("POST /api/cart/items/{id}/increment", h.incrementCart)
	mux.HandleFunc("POST /api/cart/items/{id}/decrement", h.decrementCart)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeFromCart)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)
	return mux
}

// await runs one screen lifecycle: a fresh holder starts Loading, loads
// through fetch, and the first terminal state is rendered.
func await[T any](ctx context.Context, fetch viewstate.FetchFunc[T]) result.Result[T] {
	holder := viewstate.NewHolder[T]()
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := holder.Watch(watchCtx)
	holder.Load(ctx, fetch)
	for res := range ch {
		if res.State() != result.StateLoading {
			return res
		}
	}
	return result.Error[T]("request cancelled", ctx.Err())
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// queryInt returns the named query parameter, or def when absent or invalid.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
