package ingest

import (
	"github.com/riftcolumn/lineingest/coltype"
	"github.com/riftcolumn/lineingest/storage"
	"github.com/riftcolumn/lineingest/token"
)

// tableStructureAdapter is a lazy view built once, at NEW_TABLE line-end,
// directly over the current line's columnNameType buffer, with a synthetic
// trailing TIMESTAMP column. It is never retained past the CreateTable
// call that consumes it.
type tableStructureAdapter struct {
	p              *Parser
	cache          token.Cache
	timestampIndex int
}

func newTableStructureAdapter(p *Parser, cache token.Cache) *tableStructureAdapter {
	return &tableStructureAdapter{
		p:              p,
		cache:          cache,
		timestampIndex: len(p.scratch.columnNameType),
	}
}

func (a *tableStructureAdapter) ColumnCount() int {
	return a.timestampIndex + 1
}

func (a *tableStructureAdapter) ColumnName(i int) string {
	if i == a.timestampIndex {
		return "timestamp"
	}
	return a.cache.Get(a.p.scratch.columnNameType[i].nameAddr)
}

func (a *tableStructureAdapter) ColumnType(i int) coltype.ColumnType {
	if i == a.timestampIndex {
		return coltype.TIMESTAMP
	}
	return a.p.scratch.columnNameType[i].typ
}

func (a *tableStructureAdapter) TimestampIndex() int {
	return a.timestampIndex
}

func (a *tableStructureAdapter) PartitionBy() storage.PartitionBy {
	return storage.PartitionNone
}

func (a *tableStructureAdapter) IndexedFlag(i int) bool {
	return false
}

func (a *tableStructureAdapter) IndexBlockCapacity(i int) int {
	return 0
}

func (a *tableStructureAdapter) SymbolCacheFlag(i int) bool {
	return a.p.config.DefaultSymbolCacheFlag
}

func (a *tableStructureAdapter) SymbolCapacity(i int) int {
	return a.p.config.DefaultSymbolCapacity
}

func (a *tableStructureAdapter) TableName() string {
	return a.cache.Get(a.p.tableName)
}
