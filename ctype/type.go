// Package ctype parses ClickHouse Native type-expression strings (as
// carried in a Column's type lstring) into a Type AST, and renders AST
// nodes back to their canonical spelling.
package ctype

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Kind identifies a primitive scalar kind.
type Kind int

const (
	Int8 Kind = iota
	Int16
	Int32
	Int64
	Int128
	Int256
	UInt8
	UInt16
	UInt32
	UInt64
	UInt128
	UInt256
	Float32
	Float64
	String
	UUID
	Date
	Date32
	Bool
	IPv4
	IPv6
)

var kindNames = map[Kind]string{
	Int8: "Int8", Int16: "Int16", Int32: "Int32", Int64: "Int64",
	Int128: "Int128", Int256: "Int256",
	UInt8: "UInt8", UInt16: "UInt16", UInt32: "UInt32", UInt64: "UInt64",
	UInt128: "UInt128", UInt256: "UInt256",
	Float32: "Float32", Float64: "Float64",
	String: "String", UUID: "UUID", Date: "Date", Date32: "Date32",
	Bool: "Bool", IPv4: "IPv4", IPv6: "IPv6",
}

var namesToKind = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, v := range kindNames {
		m[v] = k
	}
	return m
}()

func (k Kind) String() string { return kindNames[k] }

// Type is the parsed form of a ClickHouse type expression. It is
// implemented by Primitive, FixedString, Nullable, LowCardinality,
// Enum, Array, DateTime, DateTime64, and Decimal.
type Type interface {
	// String renders the type in canonical ClickHouse spelling, used
	// for ProjectionUnsupportedError messages and tests.
	String() string
	// Equal reports whether two Types are structurally identical,
	// used to enforce the per-file schema-stability invariant.
	Equal(Type) bool
}

// Primitive is a fixed-width or simple scalar type.
type Primitive struct {
	K Kind
}

func (p Primitive) String() string { return p.K.String() }
func (p Primitive) Equal(o Type) bool {
	q, ok := o.(Primitive)
	return ok && p.K == q.K
}

// FixedString(n) is a fixed-width byte string.
type FixedString struct {
	N uint32
}

func (f FixedString) String() string { return fmt.Sprintf("FixedString(%d)", f.N) }
func (f FixedString) Equal(o Type) bool {
	g, ok := o.(FixedString)
	return ok && f.N == g.N
}

// Nullable(T) wraps a non-Nullable inner type.
type Nullable struct {
	Inner Type
}

func (n Nullable) String() string { return fmt.Sprintf("Nullable(%s)", n.Inner.String()) }
func (n Nullable) Equal(o Type) bool {
	g, ok := o.(Nullable)
	return ok && n.Inner.Equal(g.Inner)
}

// LowCardinality(T) is a dictionary-encoded column.
type LowCardinality struct {
	Inner Type
}

func (l LowCardinality) String() string { return fmt.Sprintf("LowCardinality(%s)", l.Inner.String()) }
func (l LowCardinality) Equal(o Type) bool {
	g, ok := o.(LowCardinality)
	return ok && l.Inner.Equal(g.Inner)
}

// EnumVariant is one (name, value) pair of an Enum8/Enum16.
type EnumVariant struct {
	Name  string
	Value int32
}

// Enum is Enum8 or Enum16, distinguished by Width (1 or 2 bytes).
type Enum struct {
	Width    int // 1 for Enum8, 2 for Enum16
	Variants []EnumVariant
}

func (e Enum) String() string {
	name := "Enum8"
	if e.Width == 2 {
		name = "Enum16"
	}
	s := name + "("
	for i, v := range e.Variants {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s = %d", quoteIdent(v.Name), v.Value)
	}
	return s + ")"
}

func (e Enum) Equal(o Type) bool {
	g, ok := o.(Enum)
	if !ok || e.Width != g.Width || len(e.Variants) != len(g.Variants) {
		return false
	}
	for i := range e.Variants {
		if e.Variants[i] != g.Variants[i] {
			return false
		}
	}
	return true
}

// Lookup returns the variant name for v, or ok=false if v is not a
// recognized variant (EnumUnknownValue at the caller).
func (e Enum) Lookup(v int32) (string, bool) {
	i := slices.IndexFunc(e.Variants, func(variant EnumVariant) bool { return variant.Value == v })
	if i < 0 {
		return "", false
	}
	return e.Variants[i].Name, true
}

// Array(T) is a variable-length list of inner-typed values.
type Array struct {
	Inner Type
}

func (a Array) String() string { return fmt.Sprintf("Array(%s)", a.Inner.String()) }
func (a Array) Equal(o Type) bool {
	g, ok := o.(Array)
	return ok && a.Inner.Equal(g.Inner)
}

// DateTime is DateTime or DateTime('tz').
type DateTime struct {
	TZ string // "" if unspecified
}

func (d DateTime) String() string {
	if d.TZ == "" {
		return "DateTime"
	}
	return fmt.Sprintf("DateTime(%s)", quoteIdent(d.TZ))
}
func (d DateTime) Equal(o Type) bool {
	g, ok := o.(DateTime)
	return ok && d.TZ == g.TZ
}

// DateTime64 is DateTime64(precision[, 'tz']).
type DateTime64 struct {
	Precision int
	TZ        string
}

func (d DateTime64) String() string {
	if d.TZ == "" {
		return fmt.Sprintf("DateTime64(%d)", d.Precision)
	}
	return fmt.Sprintf("DateTime64(%d, %s)", d.Precision, quoteIdent(d.TZ))
}
func (d DateTime64) Equal(o Type) bool {
	g, ok := o.(DateTime64)
	return ok && d.Precision == g.Precision && d.TZ == g.TZ
}

// Decimal(P, S) is a fixed-point decimal, physically backed by an
// integer of width determined by P (see Width).
type Decimal struct {
	Precision int
	Scale     int
}

func (d Decimal) String() string { return fmt.Sprintf("Decimal(%d, %d)", d.Precision, d.Scale) }
func (d Decimal) Equal(o Type) bool {
	g, ok := o.(Decimal)
	return ok && d.Precision == g.Precision && d.Scale == g.Scale
}

// Width returns the backing integer width in bytes for this Decimal's
// precision, matching ClickHouse's Decimal32/64/128/256 thresholds.
func (d Decimal) Width() int {
	switch {
	case d.Precision <= 9:
		return 4
	case d.Precision <= 18:
		return 8
	case d.Precision <= 38:
		return 16
	default:
		return 32
	}
}

func quoteIdent(s string) string {
	out := []byte{'\''}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	out = append(out, '\'')
	return string(out)
}

// IsNullable reports whether t is a Nullable node.
func IsNullable(t Type) bool {
	_, ok := t.(Nullable)
	return ok
}
