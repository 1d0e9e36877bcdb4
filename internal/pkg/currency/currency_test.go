package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_CHFIdentity(t *testing.T) {
	got, err := Convert(123456, CHF, CHF)
	require.NoError(t, err)
	assert.Equal(t, int64(123456), got)
}

func TestConvert_RoundTripWithinOneCent(t *testing.T) {
	amounts := []int64{1, 99, 2500, 123456, 99999999}
	for _, cur := range Supported() {
		for _, amount := range amounts {
			converted, err := Convert(amount, CHF, cur)
			require.NoError(t, err)

			back, err := Convert(converted, cur, CHF)
			require.NoError(t, err)

			diff := back - amount
			if diff < 0 {
				diff = -diff
			}
			assert.LessOrEqual(t, diff, int64(1),
				"round trip CHF -> %s -> CHF for %d drifted by %d cents", cur, amount, diff)
		}
	}
}

func TestConvert_UnsupportedCurrency(t *testing.T) {
	_, err := Convert(100, CHF, Currency("XYZ"))
	assert.Error(t, err)

	_, err = Convert(100, Currency("XYZ"), CHF)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	cur, err := Parse(" chf ")
	require.NoError(t, err)
	assert.Equal(t, CHF, cur)

	_, err = Parse("DOGE")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "CHF 25.00", Format(2500, CHF))
	assert.Equal(t, "€ 0.99", Format(99, EUR))
}
