package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/fakestore-storefront/internal/domain/catalog"
	"github.com/xenking/fakestore-storefront/internal/domain/result"
	"github.com/xenking/fakestore-storefront/internal/paging"
)

func encodeProducts(e *jx.Encoder, products []catalog.Product) {
	e.ArrStart()
	for _, p := range products {
		encodeProduct(e, p)
	}
	e.ArrEnd()
}

func encodeCategories(e *jx.Encoder, categories []catalog.Category) {
	e.ArrStart()
	for _, c := range categories {
		encodeCategory(e, c)
	}
	e.ArrEnd()
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultPageLimit)

	res := await(r.Context(), func(ctx context.Context) result.Result[[]catalog.Product] {
		return h.repo.Products(ctx, offset, limit)
	})
	writeResult(w, res, encodeProducts)
}

func (h *Handler) productDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id", 0)
		return
	}

	res := await(r.Context(), func(ctx context.Context) result.Result[catalog.Product] {
		return h.repo.ProductDetails(ctx, id)
	})
	writeResult(w, res, encodeProduct)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	res := await(r.Context(), func(ctx context.Context) result.Result[[]catalog.Category] {
		return h.repo.Categories(ctx)
	})
	writeResult(w, res, encodeCategories)
}

func (h *Handler) listProductsByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id", 0)
		return
	}

	// Offset and limit are forwarded together or not at all; the remote
	// applies its own defaults when they are absent.
	var page *catalog.PageQuery
	if r.URL.Query().Has("offset") || r.URL.Query().Has("limit") {
		page = &catalog.PageQuery{
			Offset: queryInt(r, "offset", 0),
			Limit:  queryInt(r, "limit", defaultPageLimit),
		}
	}

	res := await(r.Context(), func(ctx context.Context) result.Result[[]catalog.Product] {
		return h.repo.ProductsByCategory(ctx, id, page)
	})
	writeResult(w, res, encodeProducts)
}

func (h *Handler) loadProductPage(w http.ResponseWriter, r *http.Request) {
	var key *int
	if r.URL.Query().Has("cursor") {
		cursor := queryInt(r, "cursor", 0)
		key = &cursor
	}

	page, err := h.pager.Load(r.Context(), key)
	if err != nil {
		var loadErr *paging.LoadError
		if errors.As(err, &loadErr) {
			writeError(w, http.StatusBadGateway, loadErr.Message, loadErr.StatusCode)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), 0)
		return
	}

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("status")
	e.Str("success")
	e.FieldStart("data")
	e.ObjStart()
	e.FieldStart("offset")
	e.Int(page.Offset)
	e.FieldStart("items")
	encodeProducts(e, page.Items)
	e.FieldStart("prevCursor")
	encodeCursor(e, page.PrevKey)
	e.FieldStart("nextCursor")
	encodeCursor(e, page.NextKey)
	e.ObjEnd()
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e)
}

func encodeCursor(e *jx.Encoder, key *int) {
	if key == nil {
		e.Null()
		return
	}
	e.Int(*key)
}
