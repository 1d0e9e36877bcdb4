package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovementFor_SaleDecrement(t *testing.T) {
	m := movementFor(7, 10, 8, ReasonSale, "order:abc")
	assert.Equal(t, uint(7), m.VariantID)
	assert.Equal(t, -2, m.Delta)
	assert.Equal(t, ReasonSale, m.Reason)
	assert.Equal(t, "order:abc", m.Reference)
}

func TestMovementFor_FlooredDecrementRecordsActualChange(t *testing.T) {
	// Ordered 5 with only 3 in stock: quantity floors at zero and the
	// ledger records the 3 units that actually left.
	m := movementFor(7, 3, 0, ReasonSale, "order:abc")
	assert.Equal(t, -3, m.Delta)
}

func TestMovementFor_Adjustment(t *testing.T) {
	m := movementFor(9, 4, 12, ReasonAdjustment, "restock")
	assert.Equal(t, 8, m.Delta)

	noop := movementFor(9, 4, 4, ReasonAdjustment, "noop")
	assert.Equal(t, 0, noop.Delta)
}
