package column

import (
	"errors"
	"fmt"
)

var (
	ErrBodyLengthMismatch               = errors.New("clickhouse-native: column body length mismatch")
	ErrLowCardinalityVersionUnsupported = errors.New("clickhouse-native: unsupported LowCardinality protocol version")
	ErrArrayOffsetsNotMonotonic         = errors.New("clickhouse-native: array offsets are not monotonically non-decreasing")
)

// EnumUnknownValueError is returned when a decoded Enum8/Enum16 code
// has no matching variant in the column's type.
type EnumUnknownValueError struct {
	Value int32
}

func (e *EnumUnknownValueError) Error() string {
	return fmt.Sprintf("clickhouse-native: enum value %d has no matching variant", e.Value)
}

// ProjectionUnsupportedError is returned by arrowproj when the host
// columnar runtime cannot represent a decoded Native type at all; it
// lives here so both column and arrowproj can use it without an
// import cycle.
type ProjectionUnsupportedError struct {
	Type string
}

func (e *ProjectionUnsupportedError) Error() string {
	return fmt.Sprintf("clickhouse-native: host cannot represent type %s", e.Type)
}
