package sku

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structuredItem() Item {
	return Item{
		Price:      d("9.99"),
		Stock:      8,
		Image:      "default.jpg",
		PriceRange: &PriceRange{Min: d("10"), Max: d("12")},
		Dimensions: colorSize(),
		Variants:   scenarioVariants(),
	}
}

func legacyItem() Item {
	return Item{
		Price: d("4.50"),
		Stock: 3,
		Image: "tea.jpg",
		Specs: []LegacyDimension{
			{Name: "Flavor", Values: []string{"Mint", "Lemon"}},
			{Name: "Pack", Values: []string{"1", "6"}},
		},
	}
}

func optionByID(t *testing.T, v View, groupID, optionID string) Option {
	t.Helper()
	for _, g := range v.Groups {
		if g.ID != groupID {
			continue
		}
		for _, o := range g.Options {
			if o.ID == optionID {
				return o
			}
		}
	}
	t.Fatalf("option %s/%s not found", groupID, optionID)
	return Option{}
}

func TestOpen_Mode(t *testing.T) {
	assert.Equal(t, ModeStructured, Open(structuredItem(), nil).Mode())
	assert.Equal(t, ModeLegacy, Open(legacyItem(), nil).Mode())

	flagOnly := legacyItem()
	flagOnly.HasStructuredVariants = true
	assert.Equal(t, ModeLegacy, Open(flagOnly, nil).Mode(), "flag without data stays legacy")

	noVariants := structuredItem()
	noVariants.Variants = nil
	assert.Equal(t, ModeLegacy, Open(noVariants, nil).Mode())
}

func TestStructuredSession_Scenario(t *testing.T) {
	s := Open(structuredItem(), nil)

	v := s.View()
	assert.Nil(t, v.Variant)
	assert.Equal(t, "10-12", v.Display.Price.String())
	assert.Equal(t, "default.jpg", v.Display.Image)
	assert.False(t, v.CanBuy)
	assert.False(t, optionByID(t, v, "size", "l").Selectable)

	require.NoError(t, s.Toggle("color", "red"))
	v = s.View()
	assert.True(t, optionByID(t, v, "color", "red").Selected)
	assert.True(t, optionByID(t, v, "size", "s").Selectable)
	assert.False(t, optionByID(t, v, "size", "l").Selectable)
	assert.Equal(t, "Red", v.Summary)
	assert.Equal(t, "red.jpg", v.Display.Image)

	require.NoError(t, s.Toggle("size", "l"))
	v = s.View()
	assert.Nil(t, v.Variant, "zero-stock combination must not resolve")
	assert.False(t, v.CanBuy)
	assert.Equal(t, "Red / L", v.Summary)

	require.NoError(t, s.Toggle("size", "s"))
	v = s.View()
	require.NotNil(t, v.Variant)
	assert.Equal(t, "v-red-s", v.Variant.ID)
	assert.Equal(t, "10", v.Display.Price.String())
	assert.Equal(t, 5, v.Display.Stock)
	assert.Equal(t, "Red / S", v.Summary)
	assert.True(t, v.CanBuy)

	assert.Equal(t, 5, s.SetQuantity(50), "capped at variant stock")
	assert.Equal(t, 1, s.SetQuantity(-2))
	assert.Equal(t, 2, s.SetQuantity(2))

	c, err := s.Confirm()
	require.NoError(t, err)
	assert.Equal(t, Confirmation{
		Quantity:  2,
		Spec:      map[string]string{"Color": "Red", "Size": "S"},
		VariantID: "v-red-s",
	}, c)

	require.ErrorIs(t, s.Toggle("color", "blue"), ErrSessionClosed)
	_, err = s.Confirm()
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestStructuredSession_ToggleDeselects(t *testing.T) {
	s := Open(structuredItem(), Selection{"color": "blue"})
	require.NoError(t, s.Toggle("color", "blue"))

	v := s.View()
	assert.Empty(t, v.Spec)
	assert.Equal(t, "", v.Summary)
}

func TestStructuredSession_ToggleErrors(t *testing.T) {
	s := Open(structuredItem(), nil)
	require.ErrorIs(t, s.Toggle("material", "wool"), ErrUnknownDimension)
	require.ErrorIs(t, s.Toggle("color", "green"), ErrUnknownValue)
}

func TestStructuredSession_PreselectionSanitized(t *testing.T) {
	s := Open(structuredItem(), Selection{"color": "blue", "size": "s", "material": "wool"})
	v := s.View()
	require.NotNil(t, v.Variant)
	assert.Equal(t, "v-blue-s", v.Variant.ID)
	assert.Equal(t, "blue-s.jpg", v.Display.Image)
	assert.Equal(t, 1, v.Quantity, "opening resets quantity")

	invalid := Open(structuredItem(), Selection{"color": "green"})
	assert.Empty(t, invalid.(*StructuredSession).Selection())
}

func TestStructuredSession_QuantityReclampedOnToggle(t *testing.T) {
	s := Open(structuredItem(), Selection{"color": "red", "size": "s"})
	require.Equal(t, 5, s.SetQuantity(5))

	require.NoError(t, s.Toggle("color", "blue"))
	assert.Equal(t, 3, s.View().Quantity)
}

func TestStructuredSession_ConfirmPartial(t *testing.T) {
	s := Open(structuredItem(), Selection{"color": "red"})
	c, err := s.Confirm()
	require.NoError(t, err)
	assert.Equal(t, Confirmation{Quantity: 1, Spec: map[string]string{"Color": "Red"}}, c)

	empty := Open(structuredItem(), nil)
	c, err = empty.Confirm()
	require.NoError(t, err)
	assert.Nil(t, c.Spec)
	assert.Empty(t, c.VariantID)
}

func TestStructuredSession_Close(t *testing.T) {
	s := Open(structuredItem(), nil)
	s.Close()
	require.ErrorIs(t, s.Toggle("color", "red"), ErrSessionClosed)
	assert.Equal(t, 1, s.SetQuantity(4))
}

func TestLegacySession(t *testing.T) {
	s := Open(legacyItem(), Selection{"Flavor": "Mint", "Pack": "12"})

	v := s.View()
	assert.Equal(t, ModeLegacy, v.Mode)
	assert.Equal(t, "4.5", v.Display.Price.String())
	assert.Equal(t, "tea.jpg", v.Display.Image)
	assert.Equal(t, "Mint", v.Summary)
	assert.False(t, v.CanBuy)
	for _, g := range v.Groups {
		for _, o := range g.Options {
			assert.True(t, o.Selectable)
		}
	}

	require.NoError(t, s.Toggle("Pack", "6"))
	v = s.View()
	assert.True(t, v.CanBuy)
	assert.Equal(t, "Mint / 6", v.Summary)

	require.ErrorIs(t, s.Toggle("Size", "XL"), ErrUnknownDimension)
	require.ErrorIs(t, s.Toggle("Pack", "12"), ErrUnknownValue)

	assert.Equal(t, 3, s.SetQuantity(10))

	c, err := s.Confirm()
	require.NoError(t, err)
	assert.Equal(t, Confirmation{
		Quantity: 3,
		Spec:     map[string]string{"Flavor": "Mint", "Pack": "6"},
	}, c)
}

func TestLegacySession_SpecAlwaysPopulated(t *testing.T) {
	s := Open(legacyItem(), nil)
	c, err := s.Confirm()
	require.NoError(t, err)
	assert.NotNil(t, c.Spec)
	assert.Empty(t, c.Spec)

	bare := Open(Item{Price: d("1"), Stock: 1}, nil)
	c, err = bare.Confirm()
	require.NoError(t, err)
	assert.Nil(t, c.Spec)
	assert.True(t, bare.View().CanBuy)
}
