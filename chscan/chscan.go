// Package chscan defines the ingress boundary for live ClickHouse
// queries: opening a TCP connection to a running server, running a
// query over it, and streaming back blocks. Connecting to a live
// server is out of scope here; this module only decodes a Native byte
// stream it is handed, wherever that stream comes from. BlockSource is
// the seam a remote-collaborator piece could implement later without
// this module's decoder changing at all.
package chscan

import "github.com/quackscience/duckdb-extension-clickhouse-native/block"

// BlockSource is implemented by anything that can produce successive
// decoded blocks, a local file via block.Reader, or, if ever built,
// a live connection to a ClickHouse server. Next returns io.EOF when
// the source is exhausted, matching block.Reader's contract.
type BlockSource interface {
	Next() (*block.Block, error)
}

var _ BlockSource = (*block.Reader)(nil)
