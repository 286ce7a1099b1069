package table

import (
	"errors"
	"fmt"
)

// ErrNoMatchingFiles is returned when a FolderScanner's glob matches
// no files.
var ErrNoMatchingFiles = errors.New("clickhouse-native: no files match folder glob")

// FolderSchemaDriftError is returned when a file scanned by a
// FolderScanner declares a different column set than the first file
// opened.
type FolderSchemaDriftError struct {
	Path string
}

func (e *FolderSchemaDriftError) Error() string {
	return fmt.Sprintf("clickhouse-native: folder schema drift: %s does not match the first file's schema", e.Path)
}
