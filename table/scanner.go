// Package table implements the two-phase bind/scan lifecycle a
// table-producing function presents to its embedding analytical
// database: Bind opens the file and reports its column names and
// types without consuming rows, and the returned Scanner then pulls
// Arrow records in capacity-bounded batches.
//
// This mirrors the bind-then-init-then-func lifecycle a DuckDB table
// function's VTab implementation goes through, translated here into a
// plain Go iterator with no cgo and no DuckDB binding.
package table

import (
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/apache/arrow/go/v11/arrow"

	"github.com/quackscience/duckdb-extension-clickhouse-native/arrowproj"
	"github.com/quackscience/duckdb-extension-clickhouse-native/block"
	"github.com/quackscience/duckdb-extension-clickhouse-native/ctype"
	"github.com/quackscience/duckdb-extension-clickhouse-native/wire"
)

// Scanner pulls successive Arrow records out of one Native file.
type Scanner struct {
	file   *os.File
	blocks *block.Reader
	opts   arrowproj.Options
	queue  []arrow.Record
	log    *zap.Logger
}

// Bind opens path, decodes its first block to establish the stream's
// schema, and returns a Scanner ready to pull rows. The file is read
// but no rows beyond the first block are consumed until Next is
// called.
func Bind(path string, opts arrowproj.Options, log *zap.Logger) (names []string, types []ctype.Type, s *Scanner, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, f.Close())
		}
	}()

	br := block.NewReader(wire.NewReader(f))
	blk, err := br.Next()
	if err != nil {
		return nil, nil, nil, err
	}
	recs, err := arrowproj.Project(blk, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Debug("bound clickhouse native file",
		zap.String("path", path),
		zap.Int("columns", len(blk.Names)),
		zap.Int("first_block_rows", blk.NRows))

	return blk.Names, blk.Types, &Scanner{file: f, blocks: br, opts: opts, queue: recs, log: log}, nil
}

// Next returns the next Arrow record, each holding at most
// opts.Capacity rows, or io.EOF once the file is exhausted.
func (s *Scanner) Next() (arrow.Record, error) {
	for len(s.queue) == 0 {
		blk, err := s.blocks.Next()
		if err != nil {
			return nil, err
		}
		recs, err := arrowproj.Project(blk, s.opts)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			// NRows == 0: a valid, non-EOF block with nothing to
			// project. Loop and pull the next block.
			continue
		}
		s.queue = recs
	}
	rec := s.queue[0]
	s.queue = s.queue[1:]
	return rec, nil
}

// Close releases the underlying file.
func (s *Scanner) Close() error {
	return s.file.Close()
}
