package table

import (
	"io"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/apache/arrow/go/v11/arrow"
	"github.com/apache/arrow/go/v11/arrow/array"
	"github.com/apache/arrow/go/v11/arrow/memory"

	"github.com/quackscience/duckdb-extension-clickhouse-native/arrowproj"
	"github.com/quackscience/duckdb-extension-clickhouse-native/ctype"
)

// sourceFileColumn is the pseudo-column FolderScanner appends to every
// record it yields, naming the file the row came from.
const sourceFileColumn = "source_file"

// FolderScanner unions the rows of every file matching a glob into a
// single stream, appending a source_file pseudo-column and reusing a
// Scanner per matched path. Every matched file must share the first
// file's schema, or scanning fails with FolderSchemaDriftError, a
// per-file relaxation of the single-file invariant, since a folder is
// a union of independently-produced files rather than one continuous
// stream.
type FolderScanner struct {
	paths     []string
	nextIdx   int
	baseNames []string
	baseTypes []ctype.Type
	opts      arrowproj.Options
	log       *zap.Logger

	cur     *Scanner
	curPath string
}

// BindFolder expands glob, opens the first match to establish the
// schema, and returns names/types with source_file appended.
func BindFolder(glob string, opts arrowproj.Options, log *zap.Logger) (names []string, types []ctype.Type, fs *FolderScanner, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	paths, err := filepath.Glob(glob)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(paths) == 0 {
		return nil, nil, nil, ErrNoMatchingFiles
	}
	sort.Strings(paths)

	baseNames, baseTypes, first, err := Bind(paths[0], opts, log)
	if err != nil {
		return nil, nil, nil, err
	}

	names = append(append([]string{}, baseNames...), sourceFileColumn)
	types = append(append([]ctype.Type{}, baseTypes...), ctype.Primitive{K: ctype.String})

	fs = &FolderScanner{
		paths:     paths,
		nextIdx:   1,
		baseNames: baseNames,
		baseTypes: baseTypes,
		opts:      opts,
		log:       log,
		cur:       first,
		curPath:   paths[0],
	}
	return names, types, fs, nil
}

// Next returns the next record with source_file appended, advancing
// to the next matched file transparently at each file boundary.
func (fs *FolderScanner) Next() (arrow.Record, error) {
	for {
		rec, err := fs.cur.Next()
		if err == io.EOF {
			if advanceErr := fs.advance(); advanceErr != nil {
				return nil, advanceErr
			}
			if fs.cur == nil {
				return nil, io.EOF
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		return withSourceFile(rec, fs.curPath), nil
	}
}

func (fs *FolderScanner) advance() error {
	closeErr := fs.cur.Close()
	fs.cur = nil
	if fs.nextIdx >= len(fs.paths) {
		return closeErr
	}
	path := fs.paths[fs.nextIdx]
	fs.nextIdx++
	names, types, sc, err := Bind(path, fs.opts, fs.log)
	if err != nil {
		return multierr.Append(closeErr, err)
	}
	if !schemaEqual(fs.baseNames, fs.baseTypes, names, types) {
		return multierr.Append(closeErr, multierr.Append(sc.Close(), &FolderSchemaDriftError{Path: path}))
	}
	fs.log.Debug("folder scanner advanced to next file", zap.String("path", path))
	fs.cur = sc
	fs.curPath = path
	return closeErr
}

// Close releases whatever file is currently open.
func (fs *FolderScanner) Close() error {
	if fs.cur == nil {
		return nil
	}
	return fs.cur.Close()
}

func schemaEqual(names1 []string, types1 []ctype.Type, names2 []string, types2 []ctype.Type) bool {
	if len(names1) != len(names2) {
		return false
	}
	for i := range names1 {
		if names1[i] != names2[i] || !types1[i].Equal(types2[i]) {
			return false
		}
	}
	return true
}

func withSourceFile(rec arrow.Record, path string) arrow.Record {
	fields := append(append([]arrow.Field{}, rec.Schema().Fields()...),
		arrow.Field{Name: sourceFileColumn, Type: arrow.BinaryTypes.String})
	schema := arrow.NewSchema(fields, nil)

	b := array.NewStringBuilder(memory.DefaultAllocator)
	defer b.Release()
	for i := int64(0); i < rec.NumRows(); i++ {
		b.Append(path)
	}
	col := b.NewArray()
	defer col.Release()

	cols := append(append([]arrow.Array{}, rec.Columns()...), col)
	return array.NewRecord(schema, cols, rec.NumRows())
}
