package viewstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/fakestore-storefront/internal/domain/result"
)

func waitFor[T any](t *testing.T, h *Holder[T], want result.State) result.Result[T] {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		cur := h.Current()
		if cur.State() == want {
			return cur
		}
		select {
		case <-deadline:
			t.Fatalf("holder never reached %s, at %s", want, cur.State())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHolder_InitialStateIsLoading(t *testing.T) {
	h := NewHolder[[]string]()
	assert.Equal(t, result.StateLoading, h.Current().State())
}

func TestHolder_LoadPublishesLoadingThenResult(t *testing.T) {
	h := NewHolder[[]string]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := h.Watch(ctx)
	assert.Equal(t, result.StateLoading, (<-ch).State())

	h.Load(ctx, func(context.Context) result.Result[[]string] {
		return result.Success([]string{"a"})
	})

	assert.Equal(t, result.StateLoading, (<-ch).State())
	final := <-ch
	require.Equal(t, result.StateSuccess, final.State())
	assert.Equal(t, []string{"a"}, final.Data())
}

// A slow first load must never overwrite a fast second one, no matter the
// completion order.
func TestHolder_StaleLoadIsDiscarded(t *testing.T) {
	h := NewHolder[string]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	firstStarted := make(chan struct{})
	release := make(chan struct{})

	h.Load(ctx, func(loadCtx context.Context) result.Result[string] {
		close(firstStarted)
		select {
		case <-release:
		case <-loadCtx.Done():
		}
		return result.Success("slow-first")
	})
	<-firstStarted

	h.Load(ctx, func(context.Context) result.Result[string] {
		return result.Success("fast-second")
	})

	res := waitFor(t, h, result.StateSuccess)
	assert.Equal(t, "fast-second", res.Data())

	// Let the first fetch finish late; the committed value must not change.
	close(release)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "fast-second", h.Current().Data())
}

func TestHolder_SupersededLoadIsCancelled(t *testing.T) {
	h := NewHolder[string]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelled := make(chan struct{})
	started := make(chan struct{})

	h.Load(ctx, func(loadCtx context.Context) result.Result[string] {
		close(started)
		<-loadCtx.Done()
		close(cancelled)
		return result.Error[string]("cancelled", loadCtx.Err())
	})
	<-started

	h.Load(ctx, func(context.Context) result.Result[string] {
		return result.Success("second")
	})

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("superseded load was not cancelled")
	}
	assert.Equal(t, "second", waitFor(t, h, result.StateSuccess).Data())
}

func TestHolder_ErrorResultIsCommitted(t *testing.T) {
	h := NewHolder[string]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.Load(ctx, func(context.Context) result.Result[string] {
		return result.Error[string]("Network error: timeout", context.DeadlineExceeded)
	})

	res := waitFor(t, h, result.StateError)
	assert.Equal(t, "Network error: timeout", res.Message())
}
