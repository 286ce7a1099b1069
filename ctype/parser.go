package ctype

import (
	"strconv"
)

// Options controls lenient parsing behavior. The core policy is to
// surface unrecognized types as errors rather than silently coercing
// them, with an opt-in fallback for callers that want one.
type Options struct {
	// FallbackToString degrades an unrecognized identifier to a
	// String type instead of returning UnsupportedTypeError. Off by
	// default.
	FallbackToString bool
}

// Parse parses a ClickHouse type-expression string into a Type AST,
// using default (strict) Options.
func Parse(s string) (Type, error) {
	return ParseWithOptions(s, Options{})
}

// ParseWithOptions is Parse with caller-supplied leniency options.
func ParseWithOptions(s string, opts Options) (Type, error) {
	p := &parser{lex: newLexer(s), opts: opts}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.lex.skipSpace()
	if len(p.lex.cursor) != 0 {
		return nil, newSyntaxError(p.lex.pos(), "unexpected trailing input %q", p.lex.cursor)
	}
	return typ, nil
}

type parser struct {
	lex  *lexer
	opts Options
}

func (p *parser) parseType() (Type, error) {
	pos := p.lex.pos()
	name, ok := p.lex.scanIdent()
	if !ok {
		return nil, newSyntaxError(pos, "expected a type name")
	}

	if k, ok := namesToKind[name]; ok {
		return Primitive{K: k}, nil
	}

	switch name {
	case "FixedString":
		return p.parseFixedString()
	case "Nullable":
		return p.parseNullable()
	case "LowCardinality":
		return p.parseLowCardinality()
	case "Enum8":
		return p.parseEnum(1)
	case "Enum16":
		return p.parseEnum(2)
	case "Array":
		return p.parseArray()
	case "DateTime":
		return p.parseDateTime()
	case "DateTime64":
		return p.parseDateTime64()
	case "Decimal":
		return p.parseDecimal()
	case "Decimal32":
		return p.parseFixedDecimal(9)
	case "Decimal64":
		return p.parseFixedDecimal(18)
	case "Decimal128":
		return p.parseFixedDecimal(38)
	case "Decimal256":
		return p.parseFixedDecimal(76)
	default:
		if p.opts.FallbackToString {
			// Consume a parenthesized argument list, if present, so a
			// trailing-input check elsewhere doesn't misfire.
			if p.lex.match('(') {
				if err := p.skipBalancedParens(); err != nil {
					return nil, err
				}
			}
			return Primitive{K: String}, nil
		}
		return nil, &UnsupportedTypeError{Name: name}
	}
}

// skipBalancedParens consumes up to and including the matching ')'
// for a '(' already consumed by the caller, without interpreting
// contents. Used only for the FallbackToString path.
func (p *parser) skipBalancedParens() error {
	depth := 1
	for depth > 0 {
		b, ok := p.lex.peekByteTight()
		if !ok {
			return newSyntaxError(p.lex.pos(), "unterminated type arguments")
		}
		p.lex.skip(1)
		switch b {
		case '(':
			depth++
		case ')':
			depth--
		case '\'':
			for {
				c, ok := p.lex.peekByteTight()
				if !ok {
					return newSyntaxError(p.lex.pos(), "unterminated string literal")
				}
				p.lex.skip(1)
				if c == '\\' {
					if _, ok := p.lex.peekByteTight(); ok {
						p.lex.skip(1)
					}
					continue
				}
				if c == '\'' {
					break
				}
			}
		}
	}
	return nil
}

func (p *parser) expect(b byte, what string) error {
	if !p.lex.match(b) {
		return newSyntaxError(p.lex.pos(), "expected %q %s", b, what)
	}
	return nil
}

func (p *parser) parseFixedString() (Type, error) {
	if err := p.expect('(', "after FixedString"); err != nil {
		return nil, err
	}
	n, err := p.parseUint()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')', "to close FixedString"); err != nil {
		return nil, err
	}
	return FixedString{N: uint32(n)}, nil
}

func (p *parser) parseNullable() (Type, error) {
	if err := p.expect('(', "after Nullable"); err != nil {
		return nil, err
	}
	inner, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if IsNullable(inner) {
		return nil, NestedNullableError{}
	}
	if _, ok := inner.(LowCardinality); ok {
		return nil, NullableLowCardinalityError{}
	}
	if err := p.expect(')', "to close Nullable"); err != nil {
		return nil, err
	}
	return Nullable{Inner: inner}, nil
}

func (p *parser) parseLowCardinality() (Type, error) {
	if err := p.expect('(', "after LowCardinality"); err != nil {
		return nil, err
	}
	inner, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')', "to close LowCardinality"); err != nil {
		return nil, err
	}
	return LowCardinality{Inner: inner}, nil
}

func (p *parser) parseArray() (Type, error) {
	if err := p.expect('(', "after Array"); err != nil {
		return nil, err
	}
	inner, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')', "to close Array"); err != nil {
		return nil, err
	}
	return Array{Inner: inner}, nil
}

func (p *parser) parseEnum(width int) (Type, error) {
	if err := p.expect('(', "after Enum"); err != nil {
		return nil, err
	}
	var variants []EnumVariant
	for {
		pos := p.lex.pos()
		name, ok, err := p.lex.scanQuotedString()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, newSyntaxError(pos, "expected quoted enum variant name")
		}
		if err := p.expect('=', "after enum variant name"); err != nil {
			return nil, err
		}
		numTok, ok := p.lex.scanNumber()
		if !ok {
			return nil, newSyntaxError(p.lex.pos(), "expected enum variant value")
		}
		v, err := strconv.ParseInt(numTok, 10, 32)
		if err != nil {
			return nil, newSyntaxError(pos, "invalid enum variant value %q", numTok)
		}
		lo, hi := enumRange(width)
		if v < lo || v > hi {
			return nil, &EnumValueRangeError{Name: name, Value: v, Width: width}
		}
		variants = append(variants, EnumVariant{Name: name, Value: int32(v)})
		if p.lex.match(',') {
			continue
		}
		break
	}
	if err := p.expect(')', "to close Enum"); err != nil {
		return nil, err
	}
	return Enum{Width: width, Variants: variants}, nil
}

func enumRange(width int) (int64, int64) {
	if width == 1 {
		return -128, 127
	}
	return -32768, 32767
}

func (p *parser) parseDateTime() (Type, error) {
	if !p.lex.match('(') {
		return DateTime{}, nil
	}
	tz, ok, err := p.lex.scanQuotedString()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newSyntaxError(p.lex.pos(), "expected quoted timezone string")
	}
	if err := p.expect(')', "to close DateTime"); err != nil {
		return nil, err
	}
	return DateTime{TZ: tz}, nil
}

func (p *parser) parseDateTime64() (Type, error) {
	if err := p.expect('(', "after DateTime64"); err != nil {
		return nil, err
	}
	precision, err := p.parseUint()
	if err != nil {
		return nil, err
	}
	if precision > 9 {
		return nil, newSyntaxError(p.lex.pos(), "DateTime64 precision %d out of range [0,9]", precision)
	}
	var tz string
	if p.lex.match(',') {
		tz, _, err = p.lex.scanQuotedString()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(')', "to close DateTime64"); err != nil {
		return nil, err
	}
	return DateTime64{Precision: int(precision), TZ: tz}, nil
}

func (p *parser) parseDecimal() (Type, error) {
	if err := p.expect('(', "after Decimal"); err != nil {
		return nil, err
	}
	precision, err := p.parseUint()
	if err != nil {
		return nil, err
	}
	if err := p.expect(',', "between Decimal precision and scale"); err != nil {
		return nil, err
	}
	scale, err := p.parseUint()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')', "to close Decimal"); err != nil {
		return nil, err
	}
	return p.checkDecimal(int(precision), int(scale))
}

func (p *parser) parseFixedDecimal(precision int) (Type, error) {
	if err := p.expect('(', "after fixed-width Decimal"); err != nil {
		return nil, err
	}
	scale, err := p.parseUint()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')', "to close fixed-width Decimal"); err != nil {
		return nil, err
	}
	return p.checkDecimal(precision, int(scale))
}

func (p *parser) checkDecimal(precision, scale int) (Type, error) {
	if precision < 1 || precision > 76 || scale < 0 || scale > precision {
		return nil, &DecimalOutOfRangeError{Precision: precision, Scale: scale}
	}
	return Decimal{Precision: precision, Scale: scale}, nil
}

func (p *parser) parseUint() (uint64, error) {
	pos := p.lex.pos()
	tok, ok := p.lex.scanNumber()
	if !ok {
		return 0, newSyntaxError(pos, "expected a number")
	}
	v, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return 0, newSyntaxError(pos, "invalid number %q", tok)
	}
	return v, nil
}
