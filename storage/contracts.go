// Package storage defines the downstream storage-engine contract consumed
// by the ingest core, and provides one concrete, file-backed
// implementation: row-oriented, multi-typed tables instead of fixed-width
// numeric disk slabs (see DESIGN.md for why the slab format itself could
// not be reused).
package storage

import (
	"github.com/riftcolumn/lineingest/coltype"
	"github.com/riftcolumn/lineingest/columnio"
)

// Status is the result of probing whether a table exists.
type Status int

const (
	TableExists Status = iota
	TableDoesNotExist
	StatusUnknown
)

// SecurityContext is an opaque credential/authorization handle threaded
// through every engine call. The real implementation is an external
// collaborator; this module never inspects it.
type SecurityContext interface{}

// PathBuffer is reusable scratch the ingest core owns across its lifetime
// and passes to engine calls that need to format a filesystem path, so the
// engine never allocates one per line. The
// in-process Engine in this package does not need it, but the type exists
// so callers can hold and Close it exactly as the contract describes.
type PathBuffer struct{}

// NewPathBuffer returns a reusable, empty PathBuffer.
func NewPathBuffer() *PathBuffer { return &PathBuffer{} }

// Close releases the path buffer. No-op for the in-process engine.
func (p *PathBuffer) Close() {}

// AppendMemory is reusable scratch passed to CreateTable.
type AppendMemory struct{}

// NewAppendMemory returns a reusable, empty AppendMemory.
func NewAppendMemory() *AppendMemory { return &AppendMemory{} }

// Close releases the append memory. No-op for the in-process engine.
func (a *AppendMemory) Close() {}

// PartitionBy identifies how a table's rows are split into storage
// partitions. This module only ever creates PartitionNone tables:
// partitioning policy is out of scope for the ingest core.
type PartitionBy int

const PartitionNone PartitionBy = 0

// TableStructure is a table-creation blueprint. The ingest
// core's table-structure adapter implements this directly over its
// row-scratch buffers, so CreateTable never needs an intermediate copy.
type TableStructure interface {
	ColumnCount() int
	ColumnName(i int) string
	ColumnType(i int) coltype.ColumnType
	TimestampIndex() int
	PartitionBy() PartitionBy
	IndexedFlag(i int) bool
	IndexBlockCapacity(i int) int
	SymbolCacheFlag(i int) bool
	SymbolCapacity(i int) int
	TableName() string
}

// RecordMetadata exposes a table's current column layout.
type RecordMetadata interface {
	GetColumnIndexQuiet(name string) int
	GetColumnType(index int) coltype.ColumnType
	GetColumnName(index int) string
	GetColumnCount() int
}

// Row is a single in-flight row being assembled by a Writer.
// Append commits the row to the writer's pending buffer; Cancel discards
// it. Put* calls before Append/Cancel satisfy columnio.Row, so the ingest
// core's column dispatch (columnio.Put) writes directly into it.
type Row interface {
	columnio.Row
	Append() error
	Cancel()
}

// Writer accepts rows for one table. Rows are not visible to
// readers until Commit.
type Writer interface {
	GetMetadata() RecordMetadata
	NewRow(micros int64) Row
	AddColumn(name string, typ coltype.ColumnType) error
	Commit() error
	GetName() string
	Close() error
}

// Engine is the downstream storage interface consumed by the ingest core.
type Engine interface {
	GetStatus(ctx SecurityContext, path *PathBuffer, name string) (Status, error)
	GetWriter(ctx SecurityContext, name string) (Writer, error)
	CreateTable(ctx SecurityContext, mem *AppendMemory, path *PathBuffer, structure TableStructure) error
}

// TimestampAdapter parses an explicit line-protocol timestamp token into
// microseconds since epoch.
type TimestampAdapter interface {
	GetMicros(token string) (int64, error)
}

// MicrosecondClock supplies the wall-clock timestamp used when a line omits
// an explicit one.
type MicrosecondClock interface {
	GetTicks() int64
}
