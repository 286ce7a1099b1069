package column

import (
	"fmt"

	"github.com/quackscience/duckdb-extension-clickhouse-native/ctype"
	"github.com/quackscience/duckdb-extension-clickhouse-native/wire"
)

// Decode reads exactly the bytes of one column body for n rows of
// type typ from r.
func Decode(r *wire.Reader, typ ctype.Type, n int) (Vector, error) {
	switch t := typ.(type) {
	case ctype.Primitive:
		return decodePrimitive(r, t.K, n)
	case ctype.FixedString:
		return decodeFixedString(r, int(t.N), n)
	case ctype.Nullable:
		return decodeNullable(r, t, n)
	case ctype.LowCardinality:
		return decodeLowCardinality(r, t, n)
	case ctype.Enum:
		return decodeEnum(r, t, n)
	case ctype.Array:
		return decodeArray(r, t, n)
	case ctype.DateTime:
		return decodeDateTime(r, t, n)
	case ctype.DateTime64:
		return decodeDateTime64(r, t, n)
	case ctype.Decimal:
		return decodeDecimal(r, t, n)
	default:
		return nil, fmt.Errorf("clickhouse-native: column: unhandled type %T", typ)
	}
}

func decodePrimitive(r *wire.Reader, k ctype.Kind, n int) (Vector, error) {
	switch k {
	case ctype.Bool:
		buf, err := r.ReadExact(n)
		if err != nil {
			return nil, err
		}
		out := make(BoolVector, n)
		for i, b := range buf {
			out[i] = b != 0
		}
		return out, nil
	case ctype.Int8:
		out := make(Int8Vector, n)
		for i := range out {
			v, err := r.ReadI8()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ctype.UInt8:
		buf, err := r.ReadExact(n)
		if err != nil {
			return nil, err
		}
		out := make(UInt8Vector, n)
		copy(out, buf)
		return out, nil
	case ctype.Int16:
		out := make(Int16Vector, n)
		for i := range out {
			v, err := r.ReadI16()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ctype.UInt16:
		out := make(UInt16Vector, n)
		for i := range out {
			v, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ctype.Int32:
		out := make(Int32Vector, n)
		for i := range out {
			v, err := r.ReadI32()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ctype.UInt32:
		out := make(UInt32Vector, n)
		for i := range out {
			v, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ctype.Int64:
		out := make(Int64Vector, n)
		for i := range out {
			v, err := r.ReadI64()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ctype.UInt64:
		out := make(UInt64Vector, n)
		for i := range out {
			v, err := r.ReadU64()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ctype.Int128:
		return decodeWide(r, 16, true, n)
	case ctype.UInt128:
		return decodeWide(r, 16, false, n)
	case ctype.Int256:
		return decodeWide(r, 32, true, n)
	case ctype.UInt256:
		return decodeWide(r, 32, false, n)
	case ctype.Float32:
		out := make(Float32Vector, n)
		for i := range out {
			v, err := r.ReadF32()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ctype.Float64:
		out := make(Float64Vector, n)
		for i := range out {
			v, err := r.ReadF64()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ctype.String:
		return decodeString(r, n)
	case ctype.UUID:
		buf, err := r.ReadExact(n * 16)
		if err != nil {
			return nil, err
		}
		data := make([]byte, len(buf))
		copy(data, buf)
		return UUIDVector{Data: data}, nil
	case ctype.Date:
		out := make(DateVector, n)
		for i := range out {
			v, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ctype.Date32:
		out := make(Date32Vector, n)
		for i := range out {
			v, err := r.ReadI32()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ctype.IPv4:
		buf, err := r.ReadExact(n * 4)
		if err != nil {
			return nil, err
		}
		data := make([]byte, len(buf))
		copy(data, buf)
		return IPv4Vector{Data: data}, nil
	case ctype.IPv6:
		buf, err := r.ReadExact(n * 16)
		if err != nil {
			return nil, err
		}
		data := make([]byte, len(buf))
		copy(data, buf)
		return IPv6Vector{Data: data}, nil
	default:
		return nil, fmt.Errorf("clickhouse-native: column: unhandled primitive kind %v", k)
	}
}

func decodeWide(r *wire.Reader, width int, signed bool, n int) (Vector, error) {
	buf, err := r.ReadExact(n * width)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(buf))
	copy(data, buf)
	return WideVector{Width: width, Signed: signed, Data: data}, nil
}

func decodeString(r *wire.Reader, n int) (Vector, error) {
	offsets := make([]uint32, n)
	var data []byte
	for i := 0; i < n; i++ {
		b, err := r.ReadLBytes()
		if err != nil {
			return nil, err
		}
		data = append(data, b...)
		offsets[i] = uint32(len(data))
	}
	return StringVector{Offsets: offsets, Data: data}, nil
}

func decodeFixedString(r *wire.Reader, width, n int) (Vector, error) {
	buf, err := r.ReadExact(width * n)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(buf))
	copy(data, buf)
	return FixedStringVector{N: width, Data: data}, nil
}

func decodeNullable(r *wire.Reader, t ctype.Nullable, n int) (Vector, error) {
	maskBytes, err := r.ReadExact(n)
	if err != nil {
		return nil, err
	}
	valid := make([]bool, n)
	for i, b := range maskBytes {
		valid[i] = b == 0 // validity byte: 0 = valid, 1 = null
	}
	inner, err := Decode(r, t.Inner, n)
	if err != nil {
		return nil, err
	}
	return NullableVector{Valid: valid, Inner: inner}, nil
}

func decodeEnum(r *wire.Reader, t ctype.Enum, n int) (Vector, error) {
	codes := make([]int32, n)
	for i := 0; i < n; i++ {
		var v int32
		if t.Width == 1 {
			b, err := r.ReadI8()
			if err != nil {
				return nil, err
			}
			v = int32(b)
		} else {
			b, err := r.ReadI16()
			if err != nil {
				return nil, err
			}
			v = int32(b)
		}
		if _, ok := t.Lookup(v); !ok {
			return nil, &EnumUnknownValueError{Value: v}
		}
		codes[i] = v
	}
	return EnumVector{Type: t, Codes: codes}, nil
}

// lowCardinalityHasAdditionalKeys is the flag bit the format requires
// a file reader see set.
const (
	lowCardinalityHasAdditionalKeys = 0x200
	lowCardinalityNeedsUpdateDict   = 0x100
	lowCardinalityIndexWidthMask    = 0xff
)

func decodeLowCardinality(r *wire.Reader, t ctype.LowCardinality, n int) (Vector, error) {
	version, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	if version != 1 {
		return nil, ErrLowCardinalityVersionUnsupported
	}
	flags, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	if flags&lowCardinalityHasAdditionalKeys == 0 {
		return nil, fmt.Errorf("clickhouse-native: LowCardinality column missing required additional-keys flag")
	}
	var indexWidth int
	switch flags & lowCardinalityIndexWidthMask {
	case 0:
		indexWidth = 1
	case 1:
		indexWidth = 2
	case 2:
		indexWidth = 4
	case 3:
		indexWidth = 8
	default:
		return nil, fmt.Errorf("clickhouse-native: LowCardinality unknown index width code %d", flags&lowCardinalityIndexWidthMask)
	}

	dictSize, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	if dictSize > uint64(1)<<32 {
		return nil, ErrBodyLengthMismatch
	}
	dict, err := Decode(r, t.Inner, int(dictSize))
	if err != nil {
		return nil, err
	}

	rowCount, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	if rowCount != uint64(n) {
		return nil, ErrBodyLengthMismatch
	}
	indices := make([]uint64, n)
	for i := 0; i < n; i++ {
		var idx uint64
		switch indexWidth {
		case 1:
			v, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			idx = uint64(v)
		case 2:
			v, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			idx = uint64(v)
		case 4:
			v, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			idx = uint64(v)
		case 8:
			v, err := r.ReadU64()
			if err != nil {
				return nil, err
			}
			idx = v
		}
		if idx >= dictSize {
			return nil, fmt.Errorf("clickhouse-native: LowCardinality index %d out of range for dictionary of size %d", idx, dictSize)
		}
		indices[i] = idx
	}
	return materializeLowCardinality(dict, indices)
}

// materializeLowCardinality flattens dictionary[indices[i]] into a
// plain Vector of the dictionary's own concrete type, so the result is
// indistinguishable from decoding the inner type directly.
func materializeLowCardinality(dict Vector, indices []uint64) (Vector, error) {
	switch d := dict.(type) {
	case NullableVector:
		valid := make([]bool, len(indices))
		innerIdx := make([]uint64, len(indices))
		for i, idx := range indices {
			valid[i] = d.Valid[idx]
			innerIdx[i] = idx
		}
		inner, err := materializeLowCardinality(d.Inner, innerIdx)
		if err != nil {
			return nil, err
		}
		return NullableVector{Valid: valid, Inner: inner}, nil
	case StringVector:
		return materializeStrings(d, indices), nil
	case FixedStringVector:
		out := make([]byte, 0, len(indices)*d.N)
		for _, idx := range indices {
			out = append(out, d.Row(int(idx))...)
		}
		return FixedStringVector{N: d.N, Data: out}, nil
	case EnumVector:
		codes := make([]int32, len(indices))
		for i, idx := range indices {
			codes[i] = d.Codes[idx]
		}
		return EnumVector{Type: d.Type, Codes: codes}, nil
	case WideVector:
		out := make([]byte, len(indices)*d.Width)
		for i, idx := range indices {
			copy(out[i*d.Width:], d.Row(int(idx)))
		}
		return WideVector{Width: d.Width, Signed: d.Signed, Data: out}, nil
	case UUIDVector:
		out := make([]byte, len(indices)*16)
		for i, idx := range indices {
			copy(out[i*16:], d.Row(int(idx)))
		}
		return UUIDVector{Data: out}, nil
	case IPv6Vector:
		out := make([]byte, len(indices)*16)
		for i, idx := range indices {
			copy(out[i*16:], d.Row(int(idx)))
		}
		return IPv6Vector{Data: out}, nil
	case IPv4Vector:
		out := make([]byte, len(indices)*4)
		for i, idx := range indices {
			copy(out[i*4:], d.Row(int(idx)))
		}
		return IPv4Vector{Data: out}, nil
	case DecimalVector:
		out := make([]byte, len(indices)*d.Width)
		for i, idx := range indices {
			copy(out[i*d.Width:], d.Row(int(idx)))
		}
		return DecimalVector{Precision: d.Precision, Scale: d.Scale, Width: d.Width, Data: out}, nil
	case BoolVector:
		out := make(BoolVector, len(indices))
		for i, idx := range indices {
			out[i] = d[idx]
		}
		return out, nil
	case Int8Vector:
		return gatherNumeric(d, indices), nil
	case Int16Vector:
		return gatherNumeric(d, indices), nil
	case Int32Vector:
		return gatherNumeric(d, indices), nil
	case Int64Vector:
		return gatherNumeric(d, indices), nil
	case UInt8Vector:
		return gatherNumeric(d, indices), nil
	case UInt16Vector:
		return gatherNumeric(d, indices), nil
	case UInt32Vector:
		return gatherNumeric(d, indices), nil
	case UInt64Vector:
		return gatherNumeric(d, indices), nil
	case Float32Vector:
		return gatherNumeric(d, indices), nil
	case Float64Vector:
		return gatherNumeric(d, indices), nil
	case DateVector:
		return gatherNumeric(d, indices), nil
	case Date32Vector:
		return gatherNumeric(d, indices), nil
	case DateTimeVector:
		out := DateTimeVector{TZ: d.TZ, Seconds: make([]uint32, len(indices))}
		for i, idx := range indices {
			out.Seconds[i] = d.Seconds[idx]
		}
		return out, nil
	case DateTime64Vector:
		out := DateTime64Vector{TZ: d.TZ, Precision: d.Precision, Ticks: make([]int64, len(indices))}
		for i, idx := range indices {
			out.Ticks[i] = d.Ticks[idx]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("clickhouse-native: LowCardinality: unhandled dictionary vector type %T", dict)
	}
}

func materializeStrings(d StringVector, indices []uint64) Vector {
	out := StringVector{Offsets: make([]uint32, len(indices))}
	for i, idx := range indices {
		out.Data = append(out.Data, d.Row(int(idx))...)
		out.Offsets[i] = uint32(len(out.Data))
	}
	return out
}

type numericElem interface {
	int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

func gatherNumeric[T ~[]E, E numericElem](d T, indices []uint64) T {
	out := make(T, len(indices))
	for i, idx := range indices {
		out[i] = d[idx]
	}
	return out
}

func decodeArray(r *wire.Reader, t ctype.Array, n int) (Vector, error) {
	offsets := make([]uint64, n)
	for i := range offsets {
		v, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		offsets[i] = v
	}
	for i := 1; i < n; i++ {
		if offsets[i] < offsets[i-1] {
			return nil, ErrArrayOffsetsNotMonotonic
		}
	}
	var total uint64
	if n > 0 {
		total = offsets[n-1]
	}
	if total > uint64(1)<<32 {
		return nil, ErrBodyLengthMismatch
	}
	values, err := Decode(r, t.Inner, int(total))
	if err != nil {
		return nil, err
	}
	return ArrayVector{Offsets: offsets, Values: values}, nil
}

func decodeDateTime(r *wire.Reader, t ctype.DateTime, n int) (Vector, error) {
	seconds := make([]uint32, n)
	for i := range seconds {
		v, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		seconds[i] = v
	}
	return DateTimeVector{TZ: t.TZ, Seconds: seconds}, nil
}

func decodeDateTime64(r *wire.Reader, t ctype.DateTime64, n int) (Vector, error) {
	ticks := make([]int64, n)
	for i := range ticks {
		v, err := r.ReadI64()
		if err != nil {
			return nil, err
		}
		ticks[i] = v
	}
	return DateTime64Vector{TZ: t.TZ, Precision: t.Precision, Ticks: ticks}, nil
}

func decodeDecimal(r *wire.Reader, t ctype.Decimal, n int) (Vector, error) {
	width := t.Width()
	buf, err := r.ReadExact(width * n)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(buf))
	copy(data, buf)
	return DecimalVector{Precision: t.Precision, Scale: t.Scale, Width: width, Data: data}, nil
}
