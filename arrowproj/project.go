// Package arrowproj projects decoded ClickHouse Native blocks into
// Arrow records. The type mapping is a double-dispatch: first a
// Native type maps to an Arrow DataType, then the Arrow builder's
// concrete kind drives how values get appended.
package arrowproj

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"net"

	"github.com/apache/arrow/go/v11/arrow"
	"github.com/apache/arrow/go/v11/arrow/array"
	"github.com/apache/arrow/go/v11/arrow/decimal128"
	"github.com/apache/arrow/go/v11/arrow/decimal256"
	"github.com/apache/arrow/go/v11/arrow/memory"

	"github.com/quackscience/duckdb-extension-clickhouse-native/block"
	"github.com/quackscience/duckdb-extension-clickhouse-native/column"
	"github.com/quackscience/duckdb-extension-clickhouse-native/ctype"
)

// Options controls projection choices left open by the wire format
// itself.
type Options struct {
	// IPv4BigEndian selects the byte order IPv4 column bodies are
	// stringified in. Defaults to true to match ClickHouse's own
	// canonical big-endian dotted-quad presentation.
	IPv4BigEndian bool
	// Capacity is the maximum number of rows per Arrow record. A
	// block with more rows than this is chunked into several records.
	Capacity int
}

// DefaultOptions returns sensible projection defaults.
func DefaultOptions() Options {
	return Options{IPv4BigEndian: true, Capacity: 8192}
}

// Schema builds the Arrow schema for a set of named, typed columns,
// as established by the first block of a stream; every later block
// in the same stream is required to share it.
func Schema(names []string, types []ctype.Type) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(names))
	for i, t := range types {
		dt, err := dataType(t)
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{Name: names[i], Type: dt, Nullable: ctype.IsNullable(t)}
	}
	return arrow.NewSchema(fields, nil), nil
}

// Project converts one Block into one or more Arrow records, each
// holding at most opts.Capacity rows.
func Project(blk *block.Block, opts Options) ([]arrow.Record, error) {
	schema, err := Schema(blk.Names, blk.Types)
	if err != nil {
		return nil, err
	}
	if blk.NRows == 0 {
		return nil, nil
	}
	chunkSize := opts.Capacity
	if chunkSize <= 0 {
		chunkSize = blk.NRows
	}
	var out []arrow.Record
	for start := 0; start < blk.NRows; start += chunkSize {
		end := start + chunkSize
		if end > blk.NRows {
			end = blk.NRows
		}
		builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
		for i, col := range blk.Columns {
			if err := appendRange(builder.Field(i), col, start, end, opts); err != nil {
				builder.Release()
				return nil, err
			}
		}
		rec := builder.NewRecord()
		builder.Release()
		out = append(out, rec)
	}
	return out, nil
}

// dataType maps a Native Type to an Arrow DataType. LowCardinality
// maps to its inner type, since column.Decode already flattens its
// values into the inner type's vector; Nullable is unwrapped since
// Arrow fields carry nullability on the field itself rather than in
// the type.
func dataType(t ctype.Type) (arrow.DataType, error) {
	switch t := t.(type) {
	case ctype.Nullable:
		return dataType(t.Inner)
	case ctype.LowCardinality:
		return dataType(t.Inner)
	case ctype.Primitive:
		return primitiveDataType(t.K)
	case ctype.FixedString:
		return &arrow.FixedSizeBinaryType{ByteWidth: int(t.N)}, nil
	case ctype.Enum:
		return arrow.BinaryTypes.String, nil
	case ctype.Array:
		inner, err := dataType(t.Inner)
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(inner), nil
	case ctype.DateTime:
		return &arrow.TimestampType{Unit: arrow.Second, TimeZone: t.TZ}, nil
	case ctype.DateTime64:
		return &arrow.TimestampType{Unit: dateTime64Unit(t.Precision), TimeZone: t.TZ}, nil
	case ctype.Decimal:
		if t.Width() <= 16 {
			return &arrow.Decimal128Type{Precision: int32(t.Precision), Scale: int32(t.Scale)}, nil
		}
		return &arrow.Decimal256Type{Precision: int32(t.Precision), Scale: int32(t.Scale)}, nil
	default:
		return nil, &column.ProjectionUnsupportedError{Type: t.String()}
	}
}

// dateTime64Unit buckets a DateTime64 precision (sub-second decimal
// digits, 0-9) into the nearest Arrow TimeUnit no coarser than it.
// Arrow only has four fixed units, so a precision that doesn't land on
// one exactly (e.g. 4 or 5) is represented at the next one up; ticks
// are rescaled to match at append time by dateTime64Scale so the
// stored value still means what its unit says.
func dateTime64Unit(p int) arrow.TimeUnit {
	switch {
	case p <= 0:
		return arrow.Second
	case p <= 3:
		return arrow.Millisecond
	case p <= 6:
		return arrow.Microsecond
	default:
		return arrow.Nanosecond
	}
}

func dateTime64UnitExponent(u arrow.TimeUnit) int {
	switch u {
	case arrow.Second:
		return 0
	case arrow.Millisecond:
		return 3
	case arrow.Microsecond:
		return 6
	default:
		return 9
	}
}

// dateTime64Scale returns the factor a raw tick value at precision p
// must be multiplied by to land in the unit dateTime64Unit(p) picked.
// The picked unit's exponent is always >= p, so this is always a
// multiplication, never a division that could lose precision.
func dateTime64Scale(p int) int64 {
	diff := dateTime64UnitExponent(dateTime64Unit(p)) - p
	if diff < 0 {
		diff = 0
	}
	scale := int64(1)
	for i := 0; i < diff; i++ {
		scale *= 10
	}
	return scale
}

func primitiveDataType(k ctype.Kind) (arrow.DataType, error) {
	switch k {
	case ctype.Int8:
		return arrow.PrimitiveTypes.Int8, nil
	case ctype.Int16:
		return arrow.PrimitiveTypes.Int16, nil
	case ctype.Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case ctype.Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case ctype.UInt8:
		return arrow.PrimitiveTypes.Uint8, nil
	case ctype.UInt16:
		return arrow.PrimitiveTypes.Uint16, nil
	case ctype.UInt32:
		return arrow.PrimitiveTypes.Uint32, nil
	case ctype.UInt64:
		return arrow.PrimitiveTypes.Uint64, nil
	case ctype.Int128, ctype.Int256, ctype.UInt128, ctype.UInt256:
		// No 128/256-bit integer type in Arrow; fall back to the
		// base-10 string rendering.
		return arrow.BinaryTypes.String, nil
	case ctype.Float32:
		return arrow.PrimitiveTypes.Float32, nil
	case ctype.Float64:
		return arrow.PrimitiveTypes.Float64, nil
	case ctype.String:
		return arrow.BinaryTypes.String, nil
	case ctype.UUID:
		return arrow.BinaryTypes.String, nil
	case ctype.Date:
		return arrow.FixedWidthTypes.Date32, nil
	case ctype.Date32:
		return arrow.FixedWidthTypes.Date32, nil
	case ctype.Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case ctype.IPv4, ctype.IPv6:
		return arrow.BinaryTypes.String, nil
	default:
		return nil, &column.ProjectionUnsupportedError{Type: k.String()}
	}
}

// appendRange appends rows [start, end) of col to b.
func appendRange(b array.Builder, col column.Vector, start, end int, opts Options) error {
	if nv, ok := col.(column.NullableVector); ok {
		for i := start; i < end; i++ {
			if !nv.Valid[i] {
				b.AppendNull()
				continue
			}
			if err := appendRange(b, nv.Inner, i, i+1, opts); err != nil {
				return err
			}
		}
		return nil
	}
	for i := start; i < end; i++ {
		if err := appendValue(b, col, i, opts); err != nil {
			return err
		}
	}
	return nil
}

func appendValue(b array.Builder, col column.Vector, i int, opts Options) error {
	switch v := col.(type) {
	case column.BoolVector:
		b.(*array.BooleanBuilder).Append(bool(v[i]))
	case column.Int8Vector:
		b.(*array.Int8Builder).Append(v[i])
	case column.Int16Vector:
		b.(*array.Int16Builder).Append(v[i])
	case column.Int32Vector:
		b.(*array.Int32Builder).Append(v[i])
	case column.Int64Vector:
		b.(*array.Int64Builder).Append(v[i])
	case column.UInt8Vector:
		b.(*array.Uint8Builder).Append(v[i])
	case column.UInt16Vector:
		b.(*array.Uint16Builder).Append(v[i])
	case column.UInt32Vector:
		b.(*array.Uint32Builder).Append(v[i])
	case column.UInt64Vector:
		b.(*array.Uint64Builder).Append(v[i])
	case column.Float32Vector:
		b.(*array.Float32Builder).Append(v[i])
	case column.Float64Vector:
		b.(*array.Float64Builder).Append(v[i])
	case column.DateVector:
		b.(*array.Date32Builder).Append(arrow.Date32(v[i]))
	case column.Date32Vector:
		b.(*array.Date32Builder).Append(arrow.Date32(v[i]))
	case column.StringVector:
		b.(*array.StringBuilder).Append(string(v.Row(i)))
	case column.FixedStringVector:
		b.(*array.FixedSizeBinaryBuilder).Append(v.Row(i))
	case column.UUIDVector:
		b.(*array.StringBuilder).Append(formatUUID(v.Row(i)))
	case column.IPv6Vector:
		b.(*array.StringBuilder).Append(net.IP(v.Row(i)).String())
	case column.IPv4Vector:
		b.(*array.StringBuilder).Append(formatIPv4(v.Row(i), opts.IPv4BigEndian))
	case column.WideVector:
		b.(*array.StringBuilder).Append(bytesToBigInt(v.Row(i), v.Signed).String())
	case column.DecimalVector:
		return appendDecimal(b, v, i)
	case column.EnumVector:
		name, ok := v.Type.Lookup(v.Codes[i])
		if !ok {
			return &column.EnumUnknownValueError{Value: v.Codes[i]}
		}
		b.(*array.StringBuilder).Append(name)
	case column.ArrayVector:
		lb := b.(*array.ListBuilder)
		lb.Append(true)
		start, end := v.Bounds(i)
		return appendRange(lb.ValueBuilder(), v.Values, int(start), int(end), opts)
	case column.DateTimeVector:
		b.(*array.TimestampBuilder).Append(arrow.Timestamp(v.Seconds[i]))
	case column.DateTime64Vector:
		scale := dateTime64Scale(v.Precision)
		b.(*array.TimestampBuilder).Append(arrow.Timestamp(v.Ticks[i] * scale))
	default:
		return fmt.Errorf("clickhouse-native: arrowproj: unhandled vector type %T", col)
	}
	return nil
}

func appendDecimal(b array.Builder, v column.DecimalVector, i int) error {
	row := v.Row(i)
	switch bld := b.(type) {
	case *array.Decimal128Builder:
		bld.Append(toDecimal128(row))
	case *array.Decimal256Builder:
		bld.Append(toDecimal256(row))
	default:
		return fmt.Errorf("clickhouse-native: arrowproj: unexpected builder %T for Decimal", b)
	}
	return nil
}

// signExtend copies b into a width-byte little-endian buffer, sign
// extending it when b is shorter (Decimal32/64 bodies are 4 or 8
// bytes but always land in a Decimal128 or Decimal256 Arrow column).
func signExtend(b []byte, width int) []byte {
	out := make([]byte, width)
	copy(out, b)
	if len(b) < width && len(b) > 0 && b[len(b)-1]&0x80 != 0 {
		for i := len(b); i < width; i++ {
			out[i] = 0xff
		}
	}
	return out
}

func toDecimal128(b []byte) decimal128.Num {
	buf := signExtend(b, 16)
	lo := binary.LittleEndian.Uint64(buf[0:8])
	hi := int64(binary.LittleEndian.Uint64(buf[8:16]))
	return decimal128.New(hi, lo)
}

func toDecimal256(b []byte) decimal256.Num {
	buf := signExtend(b, 32)
	w0 := binary.LittleEndian.Uint64(buf[0:8])
	w1 := binary.LittleEndian.Uint64(buf[8:16])
	w2 := binary.LittleEndian.Uint64(buf[16:24])
	w3 := binary.LittleEndian.Uint64(buf[24:32])
	return decimal256.New(w3, w2, w1, w0)
}

// bytesToBigInt interprets b as a little-endian integer, two's
// complement if signed is true.
func bytesToBigInt(b []byte, signed bool) *big.Int {
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	bi := new(big.Int).SetBytes(be)
	if signed && len(be) > 0 && be[0]&0x80 != 0 {
		full := new(big.Int).Lsh(big.NewInt(1), uint(len(be)*8))
		bi.Sub(bi, full)
	}
	return bi
}

func formatUUID(b []byte) string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

func formatIPv4(b []byte, bigEndian bool) string {
	if !bigEndian {
		b = []byte{b[3], b[2], b[1], b[0]}
	}
	return net.IPv4(b[0], b[1], b[2], b[3]).String()
}
