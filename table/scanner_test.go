package table

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quackscience/duckdb-extension-clickhouse-native/arrowproj"
	"github.com/quackscience/duckdb-extension-clickhouse-native/ctype"
)

func writeVaruint(buf *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

func writeLString(buf *bytes.Buffer, s string) {
	writeVaruint(buf, uint64(len(s)))
	buf.WriteString(s)
}

// writeNativeFile writes a single-column UInt32 Native stream with
// the given rows split across len(blocks) blocks to path.
func writeNativeFile(t *testing.T, path string, blocks [][]uint32) {
	t.Helper()
	var buf bytes.Buffer
	for _, rows := range blocks {
		writeVaruint(&buf, 1)
		writeVaruint(&buf, uint64(len(rows)))
		writeLString(&buf, "v")
		writeLString(&buf, "UInt32")
		for _, v := range rows {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
		}
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestBindAndScanAcrossBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.native")
	writeNativeFile(t, path, [][]uint32{{1, 2, 3}, {4, 5}})

	names, types, s, err := Bind(path, arrowproj.DefaultOptions(), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"v"}, names)
	require.Equal(t, []ctype.Type{ctype.Primitive{K: ctype.UInt32}}, types)
	defer s.Close()

	var total int64
	for {
		rec, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		total += rec.NumRows()
	}
	require.EqualValues(t, 5, total)
}

func TestBindRejectsMissingFile(t *testing.T) {
	_, _, _, err := Bind(filepath.Join(t.TempDir(), "missing"), arrowproj.DefaultOptions(), nil)
	require.Error(t, err)
}
