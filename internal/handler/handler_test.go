package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/fakestore-storefront/internal/domain/catalog"
	"github.com/xenking/fakestore-storefront/internal/paging"
	"github.com/xenking/fakestore-storefront/internal/storage/memory"
	"github.com/xenking/fakestore-storefront/internal/storefront"
	"github.com/xenking/fakestore-storefront/internal/viewstate"
)

// fakeCatalog is an in-memory catalog.Client.
type fakeCatalog struct {
	products   []catalog.Product
	categories []catalog.Category
	err        error
}

func (f *fakeCatalog) Products(_ context.Context, offset, limit int) ([]catalog.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.products) {
		return nil, nil
	}
	end := min(offset+limit, len(f.products))
	return f.products[offset:end], nil
}

func (f *fakeCatalog) ProductByID(_ context.Context, id int64) (catalog.Product, error) {
	if f.err != nil {
		return catalog.Product{}, f.err
	}
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, &catalog.ProtocolError{StatusCode: 404, Status: "Not Found"}
}

func (f *fakeCatalog) Categories(_ context.Context) ([]catalog.Category, error) {
	return f.categories, f.err
}

func (f *fakeCatalog) ProductsByCategory(_ context.Context, _ int64, _ *catalog.PageQuery) ([]catalog.Product, error) {
	return f.products, f.err
}

func testProduct(id int64, title, price string) catalog.Product {
	return catalog.Product{
		ID:     id,
		Title:  title,
		Price:  decimal.RequireFromString(price),
		Images: []string{"https://img.test/p.jpg"},
	}
}

func newTestServer(t *testing.T, fc *fakeCatalog) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := memory.NewCartStore()
	repo := storefront.New(fc, store)
	view, err := viewstate.WatchCart(ctx, store)
	require.NoError(t, err)

	h := NewHandler(repo, paging.NewSource(repo, 10), view)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
}

func getEnvelope(t *testing.T, srv *httptest.Server, path string) (int, envelope) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rdr)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestListProducts_Success(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{products: []catalog.Product{
		testProduct(1, "Mug", "9.99"),
		testProduct(2, "Desk", "120.00"),
	}})

	status, env := getEnvelope(t, srv, "/api/products")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", env.Status)

	var products []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Len(t, products, 2)
	assert.Equal(t, "Mug", products[0]["title"])
}

func TestListProducts_EmptyEnvelope(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{})

	status, env := getEnvelope(t, srv, "/api/products")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "empty", env.Status)
	assert.Nil(t, env.Data)
}

func TestListProducts_UpstreamFailureIsBadGateway(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{err: &catalog.ProtocolError{StatusCode: 500, Status: "Internal Server Error"}})

	status, env := getEnvelope(t, srv, "/api/products")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, 500, env.Code)
	assert.Equal(t, "HTTP 500 Internal Server Error", env.Message)
}

func TestProductDetails_NotFoundPassesThrough(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{})

	status, env := getEnvelope(t, srv, "/api/products/42")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, 404, env.Code)
}

func TestCategories_PlaceholderRowsYieldEmpty(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{categories: []catalog.Category{
		{ID: 1, Name: "string", Image: "https://img.test/a.jpg"},
	}})

	status, env := getEnvelope(t, srv, "/api/categories")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "empty", env.Status)
}

func TestProductPage_Cursors(t *testing.T) {
	products := make([]catalog.Product, 15)
	for i := range products {
		products[i] = testProduct(int64(i+1), "P", "1.00")
	}
	srv := newTestServer(t, &fakeCatalog{products: products})

	status, env := getEnvelope(t, srv, "/api/products/page")
	require.Equal(t, http.StatusOK, status)

	var page struct {
		Offset     int               `json:"offset"`
		Items      []json.RawMessage `json:"items"`
		PrevCursor *int              `json:"prevCursor"`
		NextCursor *int              `json:"nextCursor"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 0, page.Offset)
	assert.Len(t, page.Items, 10)
	assert.Nil(t, page.PrevCursor)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, 10, *page.NextCursor)

	_, env = getEnvelope(t, srv, "/api/products/page?cursor=20")
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 20, page.Offset)
	assert.Empty(t, page.Items)
	assert.Nil(t, page.NextCursor)
	require.NotNil(t, page.PrevCursor)
	assert.Equal(t, 10, *page.PrevCursor)
}

func TestCartFlow(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{products: []catalog.Product{
		testProduct(5, "Mug", "9.99"),
	}})

	// Add twice.
	for range 2 {
		resp := do(t, srv, http.MethodPost, "/api/cart/items", `{"productId": 5}`)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	snap := cartState(t, srv, func(s cartStateResponse) bool {
		return len(s.Lines) == 1 && s.Lines[0].Quantity == 2
	})
	assert.InDelta(t, 19.98, snap.Total, 0.001)

	// Decrement to one.
	resp := do(t, srv, http.MethodPost, "/api/cart/items/5/decrement", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	snap = cartState(t, srv, func(s cartStateResponse) bool {
		return len(s.Lines) == 1 && s.Lines[0].Quantity == 1
	})
	assert.InDelta(t, 9.99, snap.Total, 0.001)

	// Decrement to zero deletes.
	do(t, srv, http.MethodPost, "/api/cart/items/5/decrement", "")
	snap = cartState(t, srv, func(s cartStateResponse) bool {
		return len(s.Lines) == 0
	})
	assert.InDelta(t, 0, snap.Total, 0.001)
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{})

	resp := do(t, srv, http.MethodPost, "/api/cart/items", `{"productId": 404}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddToCart_BadBody(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{})

	resp := do(t, srv, http.MethodPost, "/api/cart/items", `{"wrong": true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClearCart(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{products: []catalog.Product{
		testProduct(5, "Mug", "9.99"),
	}})

	do(t, srv, http.MethodPost, "/api/cart/items", `{"productId": 5}`)
	resp := do(t, srv, http.MethodDelete, "/api/cart", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	cartState(t, srv, func(s cartStateResponse) bool { return len(s.Lines) == 0 })
}

type cartStateResponse struct {
	Lines []struct {
		ProductID int64   `json:"productId"`
		Price     float64 `json:"price"`
		Quantity  int     `json:"quantity"`
	} `json:"lines"`
	Total float64 `json:"total"`
}

// cartState polls the snapshot endpoint until ok reports that the cart view
// has caught up with the last mutation.
func cartState(t *testing.T, srv *httptest.Server, ok func(cartStateResponse) bool) cartStateResponse {
	t.Helper()
	var state cartStateResponse
	require.Eventually(t, func() bool {
		resp, err := srv.Client().Get(srv.URL + "/api/cart")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
			return false
		}
		return ok(state)
	}, 2*time.Second, 10*time.Millisecond)
	return state
}

func TestCartStream_DeliversSnapshots(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{products: []catalog.Product{
		testProduct(5, "Mug", "9.99"),
	}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/cart/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	readEvent := func() cartStateResponse {
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, "data: ") {
				var s cartStateResponse
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &s))
				return s
			}
		}
		t.Fatal("stream ended early")
		panic("unreachable")
	}

	// Initial snapshot is empty.
	assert.Empty(t, readEvent().Lines)

	do(t, srv, http.MethodPost, "/api/cart/items", `{"productId": 5}`)

	// The view may replay the empty snapshot before the mutation lands.
	event := readEvent()
	for len(event.Lines) == 0 {
		event = readEvent()
	}
	require.Len(t, event.Lines, 1)
	assert.Equal(t, int64(5), event.Lines[0].ProductID)
}
