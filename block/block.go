// Package block implements a pull iterator over ClickHouse Native
// blocks: the (n_cols, n_rows, columns[]) frames a Native stream is
// built from, with per-file schema-stability enforcement.
package block

import (
	"fmt"
	"io"

	"github.com/quackscience/duckdb-extension-clickhouse-native/column"
	"github.com/quackscience/duckdb-extension-clickhouse-native/ctype"
	"github.com/quackscience/duckdb-extension-clickhouse-native/wire"
)

// Block is one decoded frame: n_rows rows across len(Names) columns,
// each fully materialized into a column.Vector.
type Block struct {
	Names   []string
	Types   []ctype.Type
	Columns []column.Vector
	NRows   int
}

// SchemaDriftError is returned when a later block in the same stream
// declares a different column set or types than the first block
// established.
type SchemaDriftError struct {
	Names []string
	Types []ctype.Type
	Want  []string
	Got   []string
}

func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("clickhouse-native: schema drift: block declares columns %v, stream established %v", e.Got, e.Want)
}

// Reader pulls successive Blocks from an underlying wire.Reader,
// reading each block's own header and columns in sequence rather than
// relying on a single up-front metadata section for the whole stream.
type Reader struct {
	r       *wire.Reader
	names   []string
	types   []ctype.Type
	nBlocks int
}

// NewReader wraps r. The schema is established from the first block
// read and checked against every subsequent one.
func NewReader(r *wire.Reader) *Reader {
	return &Reader{r: r}
}

// Next reads and decodes the next block, or returns io.EOF once the
// stream is exhausted at a block boundary. A block with n_rows == 0
// and n_cols > 0 is a valid, non-EOF block; it still carries and
// validates the schema.
func (br *Reader) Next() (*Block, error) {
	atEOF, err := br.r.AtEOF()
	if err != nil {
		return nil, err
	}
	if atEOF {
		return nil, io.EOF
	}

	nCols, err := br.r.ReadVaruint()
	if err != nil {
		return nil, err
	}
	nRows, err := br.r.ReadVaruint()
	if err != nil {
		return nil, err
	}

	names := make([]string, nCols)
	types := make([]ctype.Type, nCols)
	cols := make([]column.Vector, nCols)
	for i := uint64(0); i < nCols; i++ {
		name, err := br.r.ReadLString()
		if err != nil {
			return nil, err
		}
		typeStr, err := br.r.ReadLString()
		if err != nil {
			return nil, err
		}
		typ, err := ctype.Parse(typeStr)
		if err != nil {
			return nil, err
		}
		v, err := column.Decode(br.r, typ, int(nRows))
		if err != nil {
			return nil, err
		}
		names[i] = name
		types[i] = typ
		cols[i] = v
	}

	if br.nBlocks == 0 {
		br.names = names
		br.types = types
	} else if err := br.checkSchema(names, types); err != nil {
		return nil, err
	}
	br.nBlocks++

	return &Block{Names: names, Types: types, Columns: cols, NRows: int(nRows)}, nil
}

func (br *Reader) checkSchema(names []string, types []ctype.Type) error {
	if len(names) != len(br.names) {
		return &SchemaDriftError{Names: br.names, Types: br.types, Want: br.names, Got: names}
	}
	for i := range names {
		if names[i] != br.names[i] || !types[i].Equal(br.types[i]) {
			return &SchemaDriftError{Names: br.names, Types: br.types, Want: br.names, Got: names}
		}
	}
	return nil
}
