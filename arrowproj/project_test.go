package arrowproj

import (
	"testing"

	"github.com/apache/arrow/go/v11/arrow"
	"github.com/apache/arrow/go/v11/arrow/array"
	"github.com/stretchr/testify/require"

	"github.com/quackscience/duckdb-extension-clickhouse-native/block"
	"github.com/quackscience/duckdb-extension-clickhouse-native/column"
	"github.com/quackscience/duckdb-extension-clickhouse-native/ctype"
)

func TestProjectPrimitiveColumns(t *testing.T) {
	blk := &block.Block{
		Names: []string{"id", "name"},
		Types: []ctype.Type{
			ctype.Primitive{K: ctype.UInt32},
			ctype.Primitive{K: ctype.String},
		},
		Columns: []column.Vector{
			column.UInt32Vector{1, 2, 3},
			column.StringVector{Offsets: []uint32{3, 6, 9}, Data: []byte("foobarbaz")},
		},
		NRows: 3,
	}
	recs, err := Project(blk, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	rec := recs[0]
	require.EqualValues(t, 3, rec.NumRows())
	idCol := rec.Column(0).(*array.Uint32)
	require.Equal(t, []uint32{1, 2, 3}, idCol.Uint32Values())
	nameCol := rec.Column(1).(*array.String)
	require.Equal(t, "foo", nameCol.Value(0))
	require.Equal(t, "baz", nameCol.Value(2))
}

func TestProjectChunksByCapacity(t *testing.T) {
	blk := &block.Block{
		Names:   []string{"v"},
		Types:   []ctype.Type{ctype.Primitive{K: ctype.UInt8}},
		Columns: []column.Vector{column.UInt8Vector{1, 2, 3, 4, 5}},
		NRows:   5,
	}
	recs, err := Project(blk, Options{Capacity: 2})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.EqualValues(t, 2, recs[0].NumRows())
	require.EqualValues(t, 2, recs[1].NumRows())
	require.EqualValues(t, 1, recs[2].NumRows())
}

func TestProjectNullableColumn(t *testing.T) {
	blk := &block.Block{
		Names: []string{"v"},
		Types: []ctype.Type{ctype.Nullable{Inner: ctype.Primitive{K: ctype.Int32}}},
		Columns: []column.Vector{
			column.NullableVector{
				Valid: []bool{true, false, true},
				Inner: column.Int32Vector{10, 999, 30},
			},
		},
		NRows: 3,
	}
	recs, err := Project(blk, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	col := recs[0].Column(0).(*array.Int32)
	require.False(t, col.IsNull(0))
	require.True(t, col.IsNull(1))
	require.False(t, col.IsNull(2))
	require.Equal(t, int32(10), col.Value(0))
	require.Equal(t, int32(30), col.Value(2))
}

func TestProjectEnumColumn(t *testing.T) {
	enumType := ctype.Enum{Width: 1, Variants: []ctype.EnumVariant{
		{Name: "up", Value: 0},
		{Name: "down", Value: 1},
	}}
	blk := &block.Block{
		Names: []string{"dir"},
		Types: []ctype.Type{enumType},
		Columns: []column.Vector{
			column.EnumVector{Type: enumType, Codes: []int32{0, 1, 0}},
		},
		NRows: 3,
	}
	recs, err := Project(blk, DefaultOptions())
	require.NoError(t, err)
	col := recs[0].Column(0).(*array.String)
	require.Equal(t, "up", col.Value(0))
	require.Equal(t, "down", col.Value(1))
}

func TestProjectArrayColumn(t *testing.T) {
	blk := &block.Block{
		Names: []string{"vals"},
		Types: []ctype.Type{ctype.Array{Inner: ctype.Primitive{K: ctype.UInt32}}},
		Columns: []column.Vector{
			column.ArrayVector{
				Offsets: []uint64{2, 2, 5},
				Values:  column.UInt32Vector{1, 2, 3, 4, 5},
			},
		},
		NRows: 3,
	}
	recs, err := Project(blk, DefaultOptions())
	require.NoError(t, err)
	col := recs[0].Column(0).(*array.List)
	require.EqualValues(t, 3, col.Len())
	valueLength := func(i int) int {
		start, end := col.ValueOffsets(i)
		return int(end - start)
	}
	require.Equal(t, 2, valueLength(0))
	require.Equal(t, 0, valueLength(1))
	require.Equal(t, 3, valueLength(2))
}

func TestProjectDateTime64RescalesTicksToArrowUnit(t *testing.T) {
	// DateTime64(4) has no exact Arrow TimeUnit; it buckets up to
	// Microsecond, so a raw tick recorded in 10^-4s units must be
	// multiplied by 100 to mean the same instant in microseconds.
	blk := &block.Block{
		Names: []string{"ts"},
		Types: []ctype.Type{ctype.DateTime64{Precision: 4}},
		Columns: []column.Vector{
			column.DateTime64Vector{Precision: 4, Ticks: []int64{12345}},
		},
		NRows: 1,
	}
	recs, err := Project(blk, DefaultOptions())
	require.NoError(t, err)
	col := recs[0].Column(0).(*array.Timestamp)
	require.Equal(t, arrow.Microsecond, recs[0].Schema().Field(0).Type.(*arrow.TimestampType).Unit)
	require.EqualValues(t, 1234500, col.Value(0))
}

func TestProjectEmptyBlockYieldsNoRecords(t *testing.T) {
	blk := &block.Block{
		Names:   []string{"v"},
		Types:   []ctype.Type{ctype.Primitive{K: ctype.UInt8}},
		Columns: []column.Vector{column.UInt8Vector{}},
		NRows:   0,
	}
	recs, err := Project(blk, DefaultOptions())
	require.NoError(t, err)
	require.Nil(t, recs)
}
