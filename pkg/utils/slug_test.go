package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Nike", "nike"},
		{"Nike Inc", "nike-inc"},
		{"  Multiple   Spaces  ", "multiple-spaces"},
		{"snake_case-name", "snake-case-name"},
		{"--Running--Shoes--", "running-shoes"},
		{"Tom & Jerry", "tom-and-jerry"},
		{"100% Cotton", "100-percent-cotton"},
		{"C++ (Programming)", "c-programming"},
		{"Men's Shoes", "mens-shoes"},
		{"a.b:c@d", "abcd"},
		{"Café Déjà Vu", "cafe-deja-vu"},
		{"Ñandú", "nandu"},
		{"T-Shirts/Tops", "t-shirtstops"},
		{"Sale!!!", "sale"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Slugify(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSlugify_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n", "!!!", "*+~.()'\";!:@", "日本語"} {
		_, err := Slugify(in)
		assert.ErrorIs(t, err, ErrInvalidSlug, "input %q", in)
	}
}

func TestSlugify_NeverContainsSeparator(t *testing.T) {
	got, err := Slugify("a/b/c")
	require.NoError(t, err)
	assert.NotContains(t, got, "/")
}

func TestIsID(t *testing.T) {
	assert.True(t, IsID(NewID()))
	assert.False(t, IsID("not-a-uuid"))
	assert.False(t, IsID(""))
}
