package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/fakestore-storefront/internal/domain/result"
)

func (h *Handler) cartSnapshot(w http.ResponseWriter, r *http.Request) {
	e := &jx.Encoder{}
	encodeCartSnapshot(e, h.cartView.Snapshot())
	writeJSON(w, http.StatusOK, e)
}

// cartStream pushes one SSE event per committed cart mutation, starting with
// the current snapshot.
func (h *Handler) cartStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported", 0)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for snap := range h.cartView.Watch(r.Context()) {
		e := &jx.Encoder{}
		encodeCartSnapshot(e, snap)
		if _, err := w.Write([]byte("data: ")); err != nil {
			return
		}
		if _, err := w.Write(e.Bytes()); err != nil {
			return
		}
		if _, err := w.Write([]byte("\n\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}

// addToCart resolves the product via the details path and delegates to the
// repository's add verb, so the cart line always carries catalog data.
func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := decodeAddRequest(r.Body)
	if !ok {
		writeError(w, http.StatusBadRequest, "body must be {\"productId\": <int>}", 0)
		return
	}

	res := await(r.Context(), func(ctx context.Context) result.Result[productResult] {
		details := h.repo.ProductDetails(ctx, productID)
		if details.State() != result.StateSuccess {
			return result.ErrorCode[productResult](details.Message(), details.Cause(), statusCodeOf(details))
		}
		if err := h.repo.AddToCart(ctx, details.Data()); err != nil {
			return result.Error[productResult]("cart write failed", err)
		}
		return result.Success(productResult{})
	})

	if res.State() == result.StateError {
		writeError(w, errorStatus(res), res.Message(), statusCodeOf(res))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type productResult struct{}

func decodeAddRequest(body io.Reader) (int64, bool) {
	data, err := io.ReadAll(io.LimitReader(body, 1<<10))
	if err != nil {
		return 0, false
	}

	var productID int64
	found := false
	d := jx.DecodeBytes(data)
	err = d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "productId" {
			return d.Skip()
		}
		id, err := d.Int64()
		if err != nil {
			return err
		}
		productID = id
		found = true
		return nil
	})
	return productID, err == nil && found
}

func (h *Handler) cartMutation(w http.ResponseWriter, r *http.Request, mutate func(ctx context.Context, id int64) error) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id", 0)
		return
	}
	if err := mutate(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "cart write failed", 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) incrementCart(w http.ResponseWriter, r *http.Request) {
	h.cartMutation(w, r, h.repo.IncrementCart)
}

func (h *Handler) decrementCart(w http.ResponseWriter, r *http.Request) {
	h.cartMutation(w, r, h.repo.DecrementCart)
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	h.cartMutation(w, r, h.repo.RemoveFromCart)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.ClearCart(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "cart write failed", 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
