package ctype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePrimitives(t *testing.T) {
	cases := map[string]Kind{
		"Int8": Int8, "UInt64": UInt64, "Float64": Float64,
		"String": String, "UUID": UUID, "Date": Date, "Bool": Bool,
		"IPv4": IPv4, "IPv6": IPv6,
	}
	for s, k := range cases {
		typ, err := Parse(s)
		require.NoError(t, err, s)
		require.Equal(t, Primitive{K: k}, typ)
	}
}

func TestParseFixedString(t *testing.T) {
	typ, err := Parse("FixedString(16)")
	require.NoError(t, err)
	require.Equal(t, FixedString{N: 16}, typ)
}

func TestParseNestedNullableLowCardinalityEnum(t *testing.T) {
	typ, err := Parse("Nullable(Enum8('a' = 1, 'b' = 2))")
	require.NoError(t, err)
	require.Equal(t, Nullable{Inner: Enum{Width: 1, Variants: []EnumVariant{
		{Name: "a", Value: 1}, {Name: "b", Value: 2},
	}}}, typ)

	typ, err = Parse("LowCardinality(Nullable(Enum8('a'=1,'b'=2)))")
	require.NoError(t, err)
	lc, ok := typ.(LowCardinality)
	require.True(t, ok)
	_, ok = lc.Inner.(Nullable)
	require.True(t, ok)
}

func TestParseRejectsNestedNullable(t *testing.T) {
	_, err := Parse("Nullable(Nullable(String))")
	require.Error(t, err)
	require.IsType(t, NestedNullableError{}, err)
}

func TestParseRejectsNullableOfLowCardinality(t *testing.T) {
	_, err := Parse("Nullable(LowCardinality(String))")
	require.Error(t, err)
	require.IsType(t, NullableLowCardinalityError{}, err)
}

func TestParseArray(t *testing.T) {
	typ, err := Parse("Array(UInt32)")
	require.NoError(t, err)
	require.Equal(t, Array{Inner: Primitive{K: UInt32}}, typ)
}

func TestParseArrayOfArray(t *testing.T) {
	typ, err := Parse("Array(Array(String))")
	require.NoError(t, err)
	require.Equal(t, Array{Inner: Array{Inner: Primitive{K: String}}}, typ)
}

func TestParseDateTimeVariants(t *testing.T) {
	typ, err := Parse("DateTime")
	require.NoError(t, err)
	require.Equal(t, DateTime{}, typ)

	typ, err = Parse("DateTime('UTC')")
	require.NoError(t, err)
	require.Equal(t, DateTime{TZ: "UTC"}, typ)

	typ, err = Parse("DateTime64(3)")
	require.NoError(t, err)
	require.Equal(t, DateTime64{Precision: 3}, typ)

	typ, err = Parse("DateTime64(6, 'America/New_York')")
	require.NoError(t, err)
	require.Equal(t, DateTime64{Precision: 6, TZ: "America/New_York"}, typ)
}

func TestParseDateTime64RejectsBadPrecision(t *testing.T) {
	_, err := Parse("DateTime64(10)")
	require.Error(t, err)
}

func TestParseDecimalVariants(t *testing.T) {
	typ, err := Parse("Decimal(18, 4)")
	require.NoError(t, err)
	require.Equal(t, Decimal{Precision: 18, Scale: 4}, typ)

	typ, err = Parse("Decimal32(2)")
	require.NoError(t, err)
	require.Equal(t, Decimal{Precision: 9, Scale: 2}, typ)

	typ, err = Parse("Decimal256(10)")
	require.NoError(t, err)
	require.Equal(t, Decimal{Precision: 76, Scale: 10}, typ)
}

func TestParseDecimalOutOfRange(t *testing.T) {
	_, err := Parse("Decimal(80, 4)")
	require.Error(t, err)
	require.IsType(t, &DecimalOutOfRangeError{}, err)

	_, err = Parse("Decimal(4, 5)")
	require.Error(t, err)
}

func TestParseUnsupportedType(t *testing.T) {
	_, err := Parse("Geometry")
	require.Error(t, err)
	require.IsType(t, &UnsupportedTypeError{}, err)
}

func TestParseFallbackToString(t *testing.T) {
	typ, err := ParseWithOptions("Geometry(Point)", Options{FallbackToString: true})
	require.NoError(t, err)
	require.Equal(t, Primitive{K: String}, typ)
}

func TestParseEnumValueOutOfRange(t *testing.T) {
	_, err := Parse("Enum8('a' = 200)")
	require.Error(t, err)
	require.IsType(t, &EnumValueRangeError{}, err)
}

func TestParseEscapedEnumName(t *testing.T) {
	typ, err := Parse(`Enum8('don\'t' = 1)`)
	require.NoError(t, err)
	e := typ.(Enum)
	require.Equal(t, "don't", e.Variants[0].Name)
}

func TestTypeStringRoundTrip(t *testing.T) {
	cases := []string{
		"Int8", "String", "FixedString(16)",
		"Nullable(String)", "LowCardinality(Nullable(String))",
		"Array(UInt32)", "DateTime", "DateTime('UTC')",
		"DateTime64(3)", "DateTime64(6, 'UTC')", "Decimal(18, 4)",
	}
	for _, s := range cases {
		typ, err := Parse(s)
		require.NoError(t, err, s)
		require.Equal(t, s, typ.String(), s)
	}
}

func TestTypeEqual(t *testing.T) {
	a, err := Parse("LowCardinality(Nullable(Enum8('a'=1,'b'=2)))")
	require.NoError(t, err)
	b, err := Parse("LowCardinality(Nullable(Enum8('a'=1,'b'=2)))")
	require.NoError(t, err)
	c, err := Parse("LowCardinality(Nullable(Enum8('a'=1,'b'=3)))")
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}
