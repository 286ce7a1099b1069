// Package column decodes a ClickHouse Native column body into a typed
// in-memory vector, given the column's parsed Type and row count.
package column

import "github.com/quackscience/duckdb-extension-clickhouse-native/ctype"

// Vector is implemented by every concrete decoded column shape. It is
// intentionally a small closed set (unlike the open-ended Type AST) so
// arrowproj can switch on concrete type instead of walking the AST
// again.
type Vector interface {
	Len() int
}

type BoolVector []bool

func (v BoolVector) Len() int { return len(v) }

type Int8Vector []int8

func (v Int8Vector) Len() int { return len(v) }

type Int16Vector []int16

func (v Int16Vector) Len() int { return len(v) }

type Int32Vector []int32

func (v Int32Vector) Len() int { return len(v) }

type Int64Vector []int64

func (v Int64Vector) Len() int { return len(v) }

type UInt8Vector []uint8

func (v UInt8Vector) Len() int { return len(v) }

type UInt16Vector []uint16

func (v UInt16Vector) Len() int { return len(v) }

type UInt32Vector []uint32

func (v UInt32Vector) Len() int { return len(v) }

type UInt64Vector []uint64

func (v UInt64Vector) Len() int { return len(v) }

type Float32Vector []float32

func (v Float32Vector) Len() int { return len(v) }

type Float64Vector []float64

func (v Float64Vector) Len() int { return len(v) }

// WideVector holds Int128/256 and UInt128/256 columns, whose bodies
// are Width little-endian bytes per row. There is no native Go
// integer that wide; arrowproj projects these to their base-10 string
// rendering.
type WideVector struct {
	Width  int // 16 or 32
	Signed bool
	Data   []byte // Width*Len() bytes
}

func (v WideVector) Len() int { return len(v.Data) / v.Width }

// Row returns the little-endian bytes of row i, least-significant
// byte first.
func (v WideVector) Row(i int) []byte { return v.Data[i*v.Width : (i+1)*v.Width] }

// StringVector holds String column bodies as a byte arena plus
// cumulative end-offsets into it.
type StringVector struct {
	Offsets []uint32 // len() == row count; Offsets[i] is the end offset of row i
	Data    []byte
}

func (v StringVector) Len() int { return len(v.Offsets) }

func (v StringVector) Row(i int) []byte {
	start := uint32(0)
	if i > 0 {
		start = v.Offsets[i-1]
	}
	return v.Data[start:v.Offsets[i]]
}

// FixedStringVector holds FixedString(N) bodies: N bytes per row,
// zero-padding preserved verbatim.
type FixedStringVector struct {
	N    int
	Data []byte
}

func (v FixedStringVector) Len() int {
	if v.N == 0 {
		return 0
	}
	return len(v.Data) / v.N
}

func (v FixedStringVector) Row(i int) []byte { return v.Data[i*v.N : (i+1)*v.N] }

type DateVector []uint16

func (v DateVector) Len() int { return len(v) }

type Date32Vector []int32

func (v Date32Vector) Len() int { return len(v) }

// UUIDVector and IPv6Vector hold 16 raw bytes per row.
type UUIDVector struct{ Data []byte }

func (v UUIDVector) Len() int         { return len(v.Data) / 16 }
func (v UUIDVector) Row(i int) []byte { return v.Data[i*16 : i*16+16] }

type IPv6Vector struct{ Data []byte }

func (v IPv6Vector) Len() int         { return len(v.Data) / 16 }
func (v IPv6Vector) Row(i int) []byte { return v.Data[i*16 : i*16+16] }

// IPv4Vector holds 4 raw bytes per row, in producer byte order;
// arrowproj's Options decides how to stringify them.
type IPv4Vector struct{ Data []byte }

func (v IPv4Vector) Len() int         { return len(v.Data) / 4 }
func (v IPv4Vector) Row(i int) []byte { return v.Data[i*4 : i*4+4] }

// NullableVector zips a validity mask with an inner Vector. Valid[i]
// == true means row i is non-null; for null rows, Inner's placeholder
// value at i must never be surfaced.
type NullableVector struct {
	Valid []bool
	Inner Vector
}

func (v NullableVector) Len() int { return len(v.Valid) }

// EnumVector holds decoded Enum8/Enum16 integer codes alongside the
// type's variant table, so arrowproj can map to names without
// re-parsing the type string.
type EnumVector struct {
	Type  ctype.Enum
	Codes []int32
}

func (v EnumVector) Len() int { return len(v.Codes) }

// ArrayVector holds cumulative end-offsets plus a single flat inner
// Vector holding every element across all rows.
type ArrayVector struct {
	Offsets []uint64 // len() == row count
	Values  Vector
}

func (v ArrayVector) Len() int { return len(v.Offsets) }

// Bounds returns the [start, end) index range into Values for row i.
func (v ArrayVector) Bounds(i int) (start, end uint64) {
	if i > 0 {
		start = v.Offsets[i-1]
	}
	return start, v.Offsets[i]
}

// DecimalVector holds the raw little-endian signed-integer backing for
// a Decimal(P, S) column; Width is 4/8/16/32 bytes per row depending
// on P (see ctype.Decimal.Width).
type DecimalVector struct {
	Precision, Scale int
	Width            int
	Data             []byte
}

func (v DecimalVector) Len() int {
	if v.Width == 0 {
		return 0
	}
	return len(v.Data) / v.Width
}

func (v DecimalVector) Row(i int) []byte { return v.Data[i*v.Width : (i+1)*v.Width] }

// DateTimeVector holds DateTime column bodies: one u32 Unix-seconds
// value per row, plus the timezone literal carried in the type
// (attached to the Arrow field, not applied to the values).
type DateTimeVector struct {
	TZ      string
	Seconds []uint32
}

func (v DateTimeVector) Len() int { return len(v.Seconds) }

// DateTime64Vector holds DateTime64(p[, tz]) bodies: one i64 tick
// value per row at the declared sub-second Precision.
type DateTime64Vector struct {
	TZ        string
	Precision int
	Ticks     []int64
}

func (v DateTime64Vector) Len() int { return len(v.Ticks) }
