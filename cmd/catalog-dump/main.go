// Command catalog-dump walks the remote catalog through the normalizing
// repository path and writes the cleaned rows as gzip-compressed NDJSON, one
// file for products and one for categories.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/fakestore-storefront/internal/client/fakestore"
	"github.com/xenking/fakestore-storefront/internal/domain/catalog"
	"github.com/xenking/fakestore-storefront/internal/domain/result"
	"github.com/xenking/fakestore-storefront/internal/paging"
	"github.com/xenking/fakestore-storefront/internal/storage/memory"
	"github.com/xenking/fakestore-storefront/internal/storefront"
)

const maxPages = 10_000

func main() {
	var (
		baseURL  string
		outDir   string
		pageSize int
		timeout  time.Duration
	)

	flag.StringVar(&baseURL, "catalog-url", "https://api.escuelajs.co/api/v1", "remote catalog base URL")
	flag.StringVar(&outDir, "out", "dump", "output directory")
	flag.IntVar(&pageSize, "page-size", 50, "products fetched per request")
	flag.DurationVar(&timeout, "timeout", 15*time.Second, "per-request timeout")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, baseURL, outDir, pageSize, timeout); err != nil {
		slog.Error("catalog dump failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog dump completed successfully")
}

func run(ctx context.Context, baseURL, outDir string, pageSize int, timeout time.Duration) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", outDir)
	}

	client, err := fakestore.New(fakestore.Config{BaseURL: baseURL, Timeout: timeout})
	if err != nil {
		return errors.Wrap(err, "create catalog client")
	}

	// The repository needs a cart store; the dump never touches it.
	repo := storefront.New(client, memory.NewCartStore())
	pager := paging.NewSource(repo, pageSize)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dumpProducts(ctx, pager, filepath.Join(outDir, "products.ndjson.gz"))
	})
	g.Go(func() error {
		return dumpCategories(ctx, repo, filepath.Join(outDir, "categories.ndjson.gz"))
	})
	return g.Wait()
}

// dumpProducts follows next cursors until the collection ends.
func dumpProducts(ctx context.Context, pager *paging.Source, path string) error {
	w, closeFn, err := openGzWriter(path)
	if err != nil {
		return err
	}
	defer closeFn()

	var (
		key   *int
		total int
	)
	for range maxPages {
		page, err := pager.Load(ctx, key)
		if err != nil {
			return errors.Wrap(err, "load page")
		}

		for _, p := range page.Items {
			if err := writeRow(w, func(e *jx.Encoder) { encodeProduct(e, p) }); err != nil {
				return err
			}
		}
		total += len(page.Items)

		if page.NextKey == nil {
			break
		}
		key = page.NextKey
		slog.Info("products progress", slog.Int("fetched", total), slog.Int("next_offset", *key))
	}

	slog.Info("products dumped", slog.Int("count", total), slog.String("path", path))
	return closeFn()
}

func dumpCategories(ctx context.Context, repo *storefront.Repository, path string) error {
	res := repo.Categories(ctx)
	if res.State() == result.StateError {
		return errors.Errorf("fetch categories: %s", res.Message())
	}

	w, closeFn, err := openGzWriter(path)
	if err != nil {
		return err
	}
	defer closeFn()

	for _, c := range res.Data() {
		if err := writeRow(w, func(e *jx.Encoder) { encodeCategory(e, c) }); err != nil {
			return err
		}
	}

	slog.Info("categories dumped", slog.Int("count", len(res.Data())), slog.String("path", path))
	return closeFn()
}

// openGzWriter returns the gzip stream and an idempotent closer that flushes
// both the stream and the file.
func openGzWriter(path string) (*pgzip.Writer, func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "create %s", path)
	}
	gz := pgzip.NewWriter(f)

	closed := false
	closeFn := func() error {
		if closed {
			return nil
		}
		closed = true
		if err := gz.Close(); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "close gzip stream %s", path)
		}
		return errors.Wrapf(f.Close(), "close %s", path)
	}
	return gz, closeFn, nil
}

func writeRow(w *pgzip.Writer, encode func(e *jx.Encoder)) error {
	e := &jx.Encoder{}
	encode(e)
	if _, err := w.Write(append(e.Bytes(), '\n')); err != nil {
		return errors.Wrap(err, "write row")
	}
	return nil
}

func encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("title")
	e.Str(p.Title)
	e.FieldStart("price")
	e.Str(p.Price.String())
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
