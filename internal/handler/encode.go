package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/fakestore-storefront/internal/domain/cart"
	"github.com/xenking/fakestore-storefront/internal/domain/catalog"
	"github.com/xenking/fakestore-storefront/internal/domain/result"
	"github.com/xenking/fakestore-storefront/internal/viewstate"
)

func encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("title")
	e.Str(p.Title)
	e.FieldStart("price")
	e.Float64(p.Price.InexactFloat64())
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("images")
	e.ArrStart()
	for _, img := range p.Images {
		e.Str(img)
	}
	e.ArrEnd()
	if p.Category != nil {
		e.FieldStart("category")
		encodeCategory(e, *p.Category)
	}
	e.ObjEnd()
}

func encodeCategory(e *jx.Encoder, c catalog.Category) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("image")
	e.Str(c.Image)
	e.ObjEnd()
}

func encodeLine(e *jx.Encoder, l cart.Line) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Int64(l.ProductID)
	e.FieldStart("title")
	e.Str(l.Title)
	e.FieldStart("price")
	e.Float64(l.Price.InexactFloat64())
	e.FieldStart("imageUrl")
	e.Str(l.ImageURL)
	e.FieldStart("quantity")
	e.Int(l.Quantity)
	e.ObjEnd()
}

func encodeCartSnapshot(e *jx.Encoder, snap viewstate.CartSnapshot) {
	e.ObjStart()
	e.FieldStart("lines")
	e.ArrStart()
	for _, l := range snap.Lines {
		encodeLine(e, l)
	}
	e.ArrEnd()
	e.FieldStart("total")
	e.Float64(snap.Total.InexactFloat64())
	e.ObjEnd()
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// errorStatus maps an error result onto an HTTP status: upstream 404 passes
// through, anything else is the facade's problem with the remote catalog.
func errorStatus[T any](res result.Result[T]) int {
	if code, ok := res.StatusCode(); ok && code == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// writeResult renders a tagged result as the response envelope. encode is
// called for the Success payload only.
func writeResult[T any](w http.ResponseWriter, res result.Result[T], encode func(e *jx.Encoder, data T)) {
	e := &jx.Encoder{}
	switch res.State() {
	case result.StateSuccess:
		e.ObjStart()
		e.FieldStart("status")
		e.Str("success")
		e.FieldStart("data")
		encode(e, res.Data())
		e.ObjEnd()
		writeJSON(w, http.StatusOK, e)
	case result.StateEmpty:
		e.ObjStart()
		e.FieldStart("status")
		e.Str("empty")
		e.ObjEnd()
		writeJSON(w, http.StatusOK, e)
	case result.StateError:
		writeError(w, errorStatus(res), res.Message(), statusCodeOf(res))
	default:
		// Loading never reaches a response writer; await only returns
		// terminal states.
		writeError(w, http.StatusInternalServerError, "request still loading", 0)
	}
}

func statusCodeOf[T any](res result.Result[T]) int {
	code, ok := res.StatusCode()
	if !ok {
		return 0
	}
	return code
}

// writeError renders the error envelope. upstreamCode is the remote status
// code when the failure was protocol-level, 0 otherwise.
func writeError(w http.ResponseWriter, status int, message string, upstreamCode int) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("status")
	e.Str("error")
	e.FieldStart("message")
	e.Str(message)
	if upstreamCode != 0 {
		e.FieldStart("code")
		e.Int(upstreamCode)
	}
	e.ObjEnd()
	writeJSON(w, status, e)
}
