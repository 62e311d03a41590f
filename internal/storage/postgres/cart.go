package postgres

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/fakestore-storefront/internal/domain/cart"
	"github.com/xenking/fakestore-storefront/pkg/stream"
)

var _ cart.Store = (*CartStore)(nil)

// CartStore implements cart.Store backed by PostgreSQL.
//
// Cart write volume is user-paced, so mutations are serialized under one
// mutex. That keeps the compound operations atomic against each other and
// guarantees that post-commit snapshots broadcast in commit order.
type CartStore struct {
	pool *pgxpool.Pool

	mu sync.Mutex
	bc *stream.Broadcaster[[]cart.Line]
}

// NewCartStore returns a CartStore that uses the given pool.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{
		pool: pool,
		bc:   stream.New[[]cart.Line](),
	}
}

// ObserveAll implements cart.Store. The initial snapshot is read under the
// mutation lock so it cannot interleave with a concurrent mutation's
// broadcast.
func (s *CartStore) ObserveAll(ctx context.Context) (<-chan []cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.bc.Subscribe(ctx, snap), nil
}

// UpsertIncrement implements cart.Store. The upsert is a single statement,
// so presence check and mutation cannot interleave with another writer even
// outside the store's own serialization. A new line always starts at
// quantity 1.
func (s *CartStore) UpsertIncrement(ctx context.Context, line cart.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO cart_lines (product_id, title, price, image_url, quantity)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = cart_lines.quantity + 1`,
		line.ProductID, line.Title, line.Price, line.ImageURL,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert cart line %d", line.ProductID)
	}
	return s.publish(ctx)
}

// Increment implements cart.Store.
func (s *CartStore) Increment(ctx context.Context, productID int64, by int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, err := s.pool.Exec(ctx,
		`UPDATE cart_lines SET quantity = quantity + $2 WHERE product_id = $1`,
		productID, by,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "increment cart line %d", productID)
	}
	if tag.RowsAffected() == 0 {
		return 0, nil
	}
	return tag.RowsAffected(), s.publish(ctx)
}

// DecrementOrDelete implements cart.Store. The read-check-write sequence runs
// inside one transaction with the row locked, so a concurrent add cannot race
// the quantity to an inconsistent value.
func (s *CartStore) DecrementOrDelete(ctx context.Context, productID int64, by int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var quantity int
		err := tx.QueryRow(ctx,
			`SELECT quantity FROM cart_lines WHERE product_id = $1 FOR UPDATE`,
			productID,
		).Scan(&quantity)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil // absent: no-op
		}
		if err != nil {
			return errors.Wrap(err, "read quantity")
		}

		if quantity > by {
			_, err = tx.Exec(ctx,
				`UPDATE cart_lines SET quantity = quantity - $2 WHERE product_id = $1`,
				productID, by,
			)
		} else {
			_, err = tx.Exec(ctx,
				`DELETE FROM cart_lines WHERE product_id = $1`,
				productID,
			)
		}
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "decrement cart line %d", productID)
	}
	return s.publish(ctx)
}

// Delete implements cart.Store.
func (s *CartStore) Delete(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.pool.Exec(ctx,
		`DELETE FROM cart_lines WHERE product_id = $1`, productID,
	); err != nil {
		return errors.Wrapf(err, "delete cart line %d", productID)
	}
	return s.publish(ctx)
}

// Clear implements cart.Store.
func (s *CartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.pool.Exec(ctx, `DELETE FROM cart_lines`); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return s.publish(ctx)
}

// snapshot reads all lines in insertion order. Caller holds s.mu.
func (s *CartStore) snapshot(ctx context.Context) ([]cart.Line, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, title, price, image_url, quantity
		FROM cart_lines
		ORDER BY position`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query cart lines")
	}
	defer rows.Close()

	lines := []cart.Line{}
	for rows.Next() {
		var l cart.Line
		if err := rows.Scan(&l.ProductID, &l.Title, &l.Price, &l.ImageURL, &l.Quantity); err != nil {
			return nil, errors.Wrap(err, "scan cart line")
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate cart lines")
	}
	return lines, nil
}

// publish broadcasts the post-commit snapshot. Caller holds s.mu.
func (s *CartStore) publish(ctx context.Context) error {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	s.bc.Publish(snap)
	return nil
}
