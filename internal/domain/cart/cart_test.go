package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTotal(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(Total(nil)))

	lines := []Line{
		{ProductID: 5, Price: decimal.RequireFromString("9.99"), Quantity: 2},
		{ProductID: 6, Price: decimal.RequireFromString("0.01"), Quantity: 3},
	}
	assert.True(t, decimal.RequireFromString("20.01").Equal(Total(lines)))
}
