package table

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quackscience/duckdb-extension-clickhouse-native/arrowproj"
)

func TestFolderScannerUnionsFilesWithSourceFileColumn(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.native")
	pathB := filepath.Join(dir, "b.native")
	writeNativeFile(t, pathA, [][]uint32{{1, 2}})
	writeNativeFile(t, pathB, [][]uint32{{3}})

	names, _, fs, err := BindFolder(filepath.Join(dir, "*.native"), arrowproj.DefaultOptions(), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"v", "source_file"}, names)
	defer fs.Close()

	var total int64
	for {
		rec, err := fs.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		total += rec.NumRows()
		require.Equal(t, 2, len(rec.Schema().Fields()))
	}
	require.EqualValues(t, 3, total)
}

func TestBindFolderRejectsEmptyGlob(t *testing.T) {
	_, _, _, err := BindFolder(filepath.Join(t.TempDir(), "*.native"), arrowproj.DefaultOptions(), nil)
	require.ErrorIs(t, err, ErrNoMatchingFiles)
}
