package paging

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/fakestore-storefront/internal/domain/catalog"
	"github.com/xenking/fakestore-storefront/internal/domain/result"
)

// pagerFunc serves canned pages keyed by offset.
type pagerFunc func(offset, limit int) result.Result[[]catalog.Product]

func (f pagerFunc) Products(_ context.Context, offset, limit int) result.Result[[]catalog.Product] {
	return f(offset, limit)
}

func products(n int, startID int64) []catalog.Product {
	out := make([]catalog.Product, n)
	for i := range n {
		out[i] = catalog.Product{
			ID:     startID + int64(i),
			Title:  "Product",
			Price:  decimal.RequireFromString("1.00"),
			Images: []string{"https://img.test/p.jpg"},
		}
	}
	return out
}

func fixedPager(total int) pagerFunc {
	return func(offset, limit int) result.Result[[]catalog.Product] {
		if offset >= total {
			return result.Empty[[]catalog.Product]()
		}
		n := min(limit, total-offset)
		return result.Success(products(n, int64(offset+1)))
	}
}

func intPtr(v int) *int { return &v }

func TestLoad_FirstFullPage(t *testing.T) {
	src := NewSource(fixedPager(25), 10)

	page, err := src.Load(context.Background(), nil)
	require.NoError(t, err)

	assert.Len(t, page.Items, 10)
	assert.Equal(t, 0, page.Offset)
	assert.Nil(t, page.PrevKey)
	require.NotNil(t, page.NextKey)
	assert.Equal(t, 10, *page.NextKey)
}

func TestLoad_MiddlePage(t *testing.T) {
	src := NewSource(fixedPager(25), 10)

	page, err := src.Load(context.Background(), intPtr(10))
	require.NoError(t, err)

	assert.Equal(t, 10, page.Offset)
	require.NotNil(t, page.PrevKey)
	assert.Equal(t, 0, *page.PrevKey)
	require.NotNil(t, page.NextKey)
	assert.Equal(t, 20, *page.NextKey)
}

func TestLoad_EmptyPageEndsCollection(t *testing.T) {
	src := NewSource(fixedPager(10), 10)

	page, err := src.Load(context.Background(), intPtr(10))
	require.NoError(t, err)

	assert.Empty(t, page.Items)
	assert.Nil(t, page.NextKey)
	require.NotNil(t, page.PrevKey)
	assert.Equal(t, 0, *page.PrevKey)
}

func TestLoad_PrevKeyFlooredAtZero(t *testing.T) {
	src := NewSource(fixedPager(25), 10)

	page, err := src.Load(context.Background(), intPtr(5))
	require.NoError(t, err)

	require.NotNil(t, page.PrevKey)
	assert.Equal(t, 0, *page.PrevKey)
}

func TestLoad_ErrorIsRetryable(t *testing.T) {
	calls := 0
	pager := pagerFunc(func(offset, _ int) result.Result[[]catalog.Product] {
		calls++
		if calls == 1 {
			cause := &catalog.ProtocolError{StatusCode: 502, Status: "Bad Gateway"}
			return result.ErrorCode[[]catalog.Product]("HTTP 502 Bad Gateway", cause, 502)
		}
		return result.Success(products(10, int64(offset+1)))
	})
	src := NewSource(pager, 10)

	_, err := src.Load(context.Background(), intPtr(20))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 502, loadErr.StatusCode)
	assert.Equal(t, "HTTP 502 Bad Gateway", loadErr.Message)

	var protoErr *catalog.ProtocolError
	assert.True(t, errors.As(err, &protoErr))

	// Same key again succeeds; nothing was cached.
	page, err := src.Load(context.Background(), intPtr(20))
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
}

func TestRefreshKey(t *testing.T) {
	src := NewSource(fixedPager(100), 10)
	ctx := context.Background()

	first, err := src.Load(ctx, nil)
	require.NoError(t, err)
	second, err := src.Load(ctx, first.NextKey)
	require.NoError(t, err)
	pages := []Page{first, second}

	// Anchor inside the first page: no prev, derived from next-pageSize.
	key := src.RefreshKey(pages, 3)
	require.NotNil(t, key)
	assert.Equal(t, 0, *key)

	// Anchor inside the second page: prev+pageSize.
	key = src.RefreshKey(pages, 14)
	require.NotNil(t, key)
	assert.Equal(t, 10, *key)

	// Anchor past the loaded items resolves to the last page.
	key = src.RefreshKey(pages, 500)
	require.NotNil(t, key)
	assert.Equal(t, 10, *key)

	// No pages loaded: reload from the start.
	assert.Nil(t, src.RefreshKey(nil, 5))
}
