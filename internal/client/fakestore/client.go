// Package fakestore implements the catalog client against the fake store
// REST API. Responses are decoded tolerantly: unknown fields are skipped and
// nulls are treated as absent, per the upstream JSON contract.
package fakestore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/fakestore-storefront/internal/domain/catalog"
)

// maxBodyBytes caps response bodies; catalog pages are small and the API is
// not under our control.
const maxBodyBytes = 8 << 20

var _ catalog.Client = (*Client)(nil)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. https://api.escuelajs.co/api/v1.
	BaseURL string
	// Timeout bounds a single request end to end.
	Timeout time.Duration
}

// Client talks to the remote catalog over HTTP with an otel-instrumented
// transport.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// get performs one GET and applies the error taxonomy: connectivity failures
// become TransportError, non-2xx responses become ProtocolError.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &catalog.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &catalog.ProtocolError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &catalog.TransportError{Err: err}
	}
	return body, nil
}

// Products implements catalog.Client.
func (c *Client) Products(ctx context.Context, offset, limit int) ([]catalog.Product, error) {
	query := url.Values{
		"offset": {strconv.Itoa(offset)},
		"limit":  {strconv.Itoa(limit)},
	}
	body, err := c.get(ctx, "/products", query)
	if err != nil {
		return nil, err
	}
	products, err := decodeProducts(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

// ProductByID implements catalog.Client. A 404 response matches
// catalog.ErrNotFound through the protocol error.
func (c *Client) ProductByID(ctx context.Context, id int64) (catalog.Product, error) {
	body, err := c.get(ctx, fmt.Sprintf("/products/%d", id), nil)
	if err != nil {
		return catalog.Product{}, err
	}
	product, err := decodeProduct(body)
	if err != nil {
		return catalog.Product{}, errors.Wrapf(err, "decode product %d", id)
	}
	return product, nil
}

// Categories implements catalog.Client.
func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	body, err := c.get(ctx, "/categories", nil)
	if err != nil {
		return nil, err
	}
	categories, err := decodeCategories(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode categories")
	}
	return categories, nil
}

// ProductsByCategory implements catalog.Client. A nil page omits offset and
// limit so the remote applies its defaults.
func (c *Client) ProductsByCategory(ctx context.Context, categoryID int64, page *catalog.PageQuery) ([]catalog.Product, error) {
	var query url.Values
	if page != nil {
		query = url.Values{
			"offset": {strconv.Itoa(page.Offset)},
			"limit":  {strconv.Itoa(page.Limit)},
		}
	}
	body, err := c.get(ctx, fmt.Sprintf("/categories/%d/products", categoryID), query)
	if err != nil {
		return nil, err
	}
	products, err := decodeProducts(body)
	if err != nil {
		return nil, errors.Wrapf(err, "decode category %d products", categoryID)
	}
	return products, nil
}
