// Package paging derives offset-based page cursors for the product list.
//
// A cursor is a row offset into the remote collection. The next cursor is
// offset+pageSize unless the (cleaned) page came back with zero items, which
// ends the collection; the previous cursor is offset-pageSize floored at
// zero, absent on the first page.
package paging

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/fakestore-storefront/internal/domain/catalog"
	"github.com/xenking/fakestore-storefront/internal/domain/result"
)

// ProductPager is the slice of the repository the source needs: the
// normalized product-list path.
type ProductPager interface {
	Products(ctx context.Context, offset, limit int) result.Result[[]catalog.Product]
}

// Page is one loaded page with its derived cursors. A nil cursor means no
// page exists in that direction.
type Page struct {
	Items   []catalog.Product
	Offset  int
	PrevKey *int
	NextKey *int
}

// LoadError reports a failed page load. Loads are retryable by calling Load
// again with the same key; nothing is cached.
type LoadError struct {
	Message    string
	StatusCode int // 0 when the failure was not protocol-level
	Cause      error
}

func (e *LoadError) Error() string { return e.Message }

func (e *LoadError) Unwrap() error { return e.Cause }

// Source loads pages through the repository path, so every page is cleaned
// by the normalizer before cursors are derived. It holds no state beyond the
// page size.
type Source struct {
	repo     ProductPager
	pageSize int
}

// NewSource creates a Source with the given page size.
func NewSource(repo ProductPager, pageSize int) *Source {
	return &Source{repo: repo, pageSize: pageSize}
}

// PageSize returns the configured page size.
func (s *Source) PageSize() int { return s.pageSize }

// Load fetches the page at key (nil means the start of the collection) and
// derives its cursors.
func (s *Source) Load(ctx context.Context, key *int) (Page, error) {
	offset := 0
	if key != nil {
		offset = *key
	}

	res := s.repo.Products(ctx, offset, s.pageSize)
	switch res.State() {
	case result.StateSuccess, result.StateEmpty:
	case result.StateError:
		return Page{}, &LoadError{
			Message:    res.Message(),
			StatusCode: statusCode(res),
			Cause:      res.Cause(),
		}
	default:
		return Page{}, errors.Errorf("unexpected result state %q", res.State())
	}

	page := Page{Items: res.Data(), Offset: offset}
	if len(page.Items) > 0 {
		next := offset + s.pageSize
		page.NextKey = &next
	}
	if offset > 0 {
		prev := max(0, offset-s.pageSize)
		page.PrevKey = &prev
	}
	return page, nil
}

// RefreshKey derives the offset that reproduces the viewport after a reload:
// find the loaded page containing the anchor position and recompute its
// offset from a neighbouring cursor, prevKey+pageSize first, nextKey-pageSize
// as fallback. Nil means reload from the start.
func (s *Source) RefreshKey(pages []Page, anchor int) *int {
	page, ok := closestPage(pages, anchor)
	if !ok {
		return nil
	}
	if page.PrevKey != nil {
		key := *page.PrevKey + s.pageSize
		return &key
	}
	if page.NextKey != nil {
		key := *page.NextKey - s.pageSize
		return &key
	}
	return nil
}

// closestPage finds the page containing the anchor position, counting items
// across pages in load order. Anchors past the end resolve to the last page.
func closestPage(pages []Page, anchor int) (Page, bool) {
	if len(pages) == 0 || anchor < 0 {
		return Page{}, false
	}
	start := 0
	for _, p := range pages {
		if anchor < start+len(p.Items) {
			return p, true
		}
		start += len(p.Items)
	}
	return pages[len(pages)-1], true
}

func statusCode[T any](r result.Result[T]) int {
	code, ok := r.StatusCode()
	if !ok {
		return 0
	}
	return code
}
