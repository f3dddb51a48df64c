package ingest

import (
	"github.com/riftcolumn/lineingest/coltype"
	"github.com/riftcolumn/lineingest/token"
)

// nameType is one entry of the NEW_TABLE scratch buffer columnNameType: a
// column name address paired with its inferred type. Modeled as two typed
// vectors (this and indexType below) rather than one packed integer
// stream.
type nameType struct {
	nameAddr token.Address
	typ      coltype.ColumnType
}

// indexType is one entry of the APPEND scratch buffer columnIndexAndType:
// an existing column's index paired with the type it was written as on
// this line.
type indexType struct {
	index int
	typ   coltype.ColumnType
}

// scratch holds the three per-line buffers shared between NEW_TABLE and
// APPEND mode. Reused forever across lines — reset only truncates, it
// never reallocates.
type scratch struct {
	columnNameType     []nameType
	columnIndexAndType []indexType
	columnValues       []token.Address
}

// reset clears all three buffers, keeping their backing arrays.
func (s *scratch) reset() {
	s.columnNameType = s.columnNameType[:0]
	s.columnIndexAndType = s.columnIndexAndType[:0]
	s.columnValues = s.columnValues[:0]
}

// empty reports whether every buffer has been cleared — true after every
// OnLineEnd or OnError.
func (s *scratch) empty() bool {
	return len(s.columnNameType) == 0 && len(s.columnIndexAndType) == 0 && len(s.columnValues) == 0
}
