// Package cart defines the persistent shopping cart: the line model, the
// store contract with its quantity state machine, and total derivation.
//
// A product identifier is either Absent (no line) or Present with quantity
// >= 1. A line whose quantity would drop to zero or below is deleted, never
// stored. The compound operations (add-or-increment, decrement-or-delete)
// are single atomic steps in every implementation.
package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// Line is one cart entry, keyed by product identifier.
type Line struct {
	ProductID int64
	Title     string
	Price     decimal.Decimal
	ImageURL  string
	Quantity  int
}

// Store is the durable cart contract. Mutations targeting an absent
// identifier are no-ops, not errors. Implementations serialize mutations so
// that observers see every committed state in commit order.
type Store interface {
	// ObserveAll returns a stream of full cart snapshots in insertion order:
	// the current snapshot on subscribe, then one snapshot per committed
	// mutation. The channel closes when ctx is done.
	ObserveAll(ctx context.Context) (<-chan []Line, error)

	// UpsertIncrement inserts the line with quantity 1 when the product is
	// absent, otherwise increments the existing quantity by 1. The presence
	// check and the mutation are one atomic step.
	UpsertIncrement(ctx context.Context, line Line) error

	// Increment raises the quantity by `by` and reports how many lines were
	// affected (0 when the product is absent).
	Increment(ctx context.Context, productID int64, by int) (int64, error)

	// DecrementOrDelete lowers the quantity by `by`, deleting the line
	// outright when the remaining quantity would be zero or below.
	DecrementOrDelete(ctx context.Context, productID int64, by int) error

	// Delete removes the line regardless of quantity. Idempotent.
	Delete(ctx context.Context, productID int64) error

	// Clear removes every line.
	Clear(ctx context.Context) error
}

// Total derives the cart total as sum(price * quantity). It is recomputed
// from each snapshot and never stored, so it cannot drift.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
