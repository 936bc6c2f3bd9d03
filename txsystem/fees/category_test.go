package fees

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	var testCases = []struct {
		in     string
		out    Category
		errStr string
	}{
		{in: "fees/base", out: Base},
		{in: "fees/bytes", out: Bytes},
		{in: "generic_asset/transfer", out: Category{Namespace: "generic_asset", Variant: "transfer"}},
		// only the first '/' separates namespace and variant
		{in: "ns/a/b", out: Category{Namespace: "ns", Variant: "a/b"}},
		{in: "", errStr: `invalid fee category "": expected namespace/variant`},
		{in: "fees", errStr: `invalid fee category "fees": expected namespace/variant`},
		{in: "/base", errStr: "namespace is empty"},
		{in: "fees/", errStr: "variant is empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			c, err := ParseCategory(tc.in)
			if tc.errStr != "" {
				require.ErrorContains(t, err, tc.errStr)
				require.Zero(t, c)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.out, c)
			require.Equal(t, tc.in, c.Key())
		})
	}
}

func TestCategory_IsValid(t *testing.T) {
	require.NoError(t, Base.IsValid())
	require.NoError(t, NewCategory("m", "x").IsValid())

	err := Category{}.IsValid()
	require.ErrorContains(t, err, "namespace is empty")
	require.ErrorContains(t, err, "variant is empty")

	require.ErrorContains(t, NewCategory("a/b", "c").IsValid(), `namespace "a/b" contains '/'`)
}

func TestCategory_Text(t *testing.T) {
	b, err := Bytes.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "fees/bytes", string(b))

	var c Category
	require.NoError(t, c.UnmarshalText([]byte("generic_asset/transfer")))
	require.Equal(t, NewCategory("generic_asset", "transfer"), c)
	require.Equal(t, "generic_asset/transfer", c.String())

	require.Error(t, c.UnmarshalText([]byte("invalid")))
	// failed unmarshal doesn't change the value
	require.Equal(t, NewCategory("generic_asset", "transfer"), c)

	_, err = Category{Variant: "x"}.MarshalText()
	require.ErrorContains(t, err, "namespace is empty")
}
