package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_Add_MergesSameVariantNoCustomization(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.Add(Line{VariantID: 7, ProductID: 1, Quantity: 1, UnitPriceCents: 2500}))
	require.NoError(t, c.Add(Line{VariantID: 7, ProductID: 1, Quantity: 2, UnitPriceCents: 2500}))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)
}

func TestCart_Add_DistinctCustomizationsStayDistinct(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.Add(Line{VariantID: 7, Quantity: 1, Customization: map[string]string{"text": "Anna"}}))
	require.NoError(t, c.Add(Line{VariantID: 7, Quantity: 1, Customization: map[string]string{"text": "Ben"}}))

	assert.Len(t, c.Lines, 2)
}

func TestCart_Add_CustomizationOrderInsensitive(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.Add(Line{VariantID: 7, Quantity: 1, Customization: map[string]string{"text": "Anna", "font": "serif"}}))
	require.NoError(t, c.Add(Line{VariantID: 7, Quantity: 1, Customization: map[string]string{"font": "serif", "text": "Anna"}}))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestCart_Add_SeparatorCharactersDoNotCollide(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.Add(Line{VariantID: 7, Quantity: 1, Customization: map[string]string{"a": "b;c=d"}}))
	require.NoError(t, c.Add(Line{VariantID: 7, Quantity: 1, Customization: map[string]string{"a": "b", "c": "d"}}))

	assert.Len(t, c.Lines, 2)
}

func TestCustomizationKey_EscapesValues(t *testing.T) {
	a := CustomizationKey(map[string]string{"a": "b;c=d"})
	b := CustomizationKey(map[string]string{"a": "b", "c": "d"})
	assert.NotEqual(t, a, b)
	assert.Empty(t, CustomizationKey(nil))
}

func TestCart_Add_RejectsZeroQuantity(t *testing.T) {
	c := &Cart{}
	assert.Error(t, c.Add(Line{VariantID: 7, Quantity: 0}))
}

func TestCart_UpdateQuantity(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.Add(Line{VariantID: 7, Quantity: 2}))

	require.NoError(t, c.UpdateQuantity(7, nil, 5))
	assert.Equal(t, 5, c.Lines[0].Quantity)

	require.NoError(t, c.UpdateQuantity(7, nil, 0))
	assert.True(t, c.IsEmpty())

	assert.Error(t, c.UpdateQuantity(99, nil, 1))
}

func TestCart_SubtotalCents(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.Add(Line{VariantID: 1, Quantity: 2, UnitPriceCents: 2500}))
	require.NoError(t, c.Add(Line{VariantID: 2, Quantity: 1, UnitPriceCents: 999}))

	assert.Equal(t, int64(5999), c.SubtotalCents())
	assert.Equal(t, 3, c.TotalQuantity())
}

func TestCookieRoundTrip(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.Add(Line{VariantID: 7, ProductID: 3, Quantity: 2, UnitPriceCents: 2500, Customization: map[string]string{"text": "Anna"}}))

	encoded, err := EncodeCookie(c)
	require.NoError(t, err)

	decoded, err := DecodeCookie(encoded)
	require.NoError(t, err)
	assert.Equal(t, c.Lines, decoded.Lines)
}

func TestDecodeCookie_Empty(t *testing.T) {
	c, err := DecodeCookie("")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestDecodeCookie_Malformed(t *testing.T) {
	_, err := DecodeCookie("%%%not-base64%%%")
	assert.Error(t, err)
}
