package ctype

import "fmt"

// SyntaxError is a positional parse failure: a message plus a byte
// offset into the original type string.
type SyntaxError struct {
	Pos int
	Msg string
}

func newSyntaxError(pos int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("type syntax error at byte %d: %s", e.Pos, e.Msg)
}

// UnsupportedTypeError is returned for an identifier the parser
// recognizes as well-formed but does not know how to decode.
type UnsupportedTypeError struct {
	Name string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.Name)
}

// EnumValueRangeError is returned when an Enum8/Enum16 literal value
// does not fit the declared width.
type EnumValueRangeError struct {
	Name  string
	Value int64
	Width int
}

func (e *EnumValueRangeError) Error() string {
	return fmt.Sprintf("enum value %d for %q does not fit %d-bit width", e.Value, e.Name, e.Width*8)
}

// DecimalOutOfRangeError is returned for a Decimal(P, S) whose
// precision or scale falls outside the legal range.
type DecimalOutOfRangeError struct {
	Precision, Scale int
}

func (e *DecimalOutOfRangeError) Error() string {
	return fmt.Sprintf("decimal(%d, %d) out of range", e.Precision, e.Scale)
}

// NestedNullableError is returned for Nullable(Nullable(...)), which
// is never well-formed.
type NestedNullableError struct{}

func (NestedNullableError) Error() string { return "nested Nullable types are not allowed" }

// NullableLowCardinalityError is returned for Nullable(LowCardinality(T)),
// which is not well-formed; only LowCardinality(Nullable(T)) is.
type NullableLowCardinalityError struct{}

func (NullableLowCardinalityError) Error() string {
	return "Nullable(LowCardinality(T)) is not well-formed; use LowCardinality(Nullable(T))"
}
