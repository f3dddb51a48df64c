package storage

import (
	"github.com/riftcolumn/lineingest/coltype"
	"golang.org/x/exp/slices"
)

// columnDef is one column's persisted definition: a name and type, for a
// multi-typed, row-oriented column instead of a numeric disk slab.
type columnDef struct {
	Name string           `json:"name"`
	Type coltype.ColumnType `json:"type"`
}

// schemaFile is the on-disk JSON document for one table, persisted the way
// manager/meta/meta_manager.go persists schema.Schema — one schema.json per
// table directory.
type schemaFile struct {
	Name    string      `json:"name"`
	Columns []columnDef `json:"columns"`
	Rows    int64       `json:"rows"`
}

// metadata is the in-memory RecordMetadata backing a table. It is shared
// between the engine's cached entry and any Writer built on top of it, so
// an AddColumn call is immediately visible to later GetStatus/GetWriter
// callers.
type metadata struct {
	columns []columnDef
	index   map[string]int
}

func newMetadata(cols []columnDef) *metadata {
	m := &metadata{columns: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		m.index[c.Name] = i
	}
	return m
}

func (m *metadata) GetColumnIndexQuiet(name string) int {
	if idx, ok := m.index[name]; ok {
		return idx
	}
	return -1
}

func (m *metadata) GetColumnType(index int) coltype.ColumnType {
	return m.columns[index].Type
}

func (m *metadata) GetColumnName(index int) string {
	return m.columns[index].Name
}

func (m *metadata) GetColumnCount() int {
	return len(m.columns)
}

// addColumn appends a new column and returns its index.
func (m *metadata) addColumn(name string, typ coltype.ColumnType) int {
	idx := len(m.columns)
	m.columns = append(m.columns, columnDef{Name: name, Type: typ})
	m.index[name] = idx
	return idx
}

// sortedColumnNames returns column names in a deterministic order for
// introspection/logging.
func (m *metadata) sortedColumnNames() []string {
	names := make([]string, len(m.columns))
	for i, c := range m.columns {
		names[i] = c.Name
	}
	slices.Sort(names)
	return names
}

func (m *metadata) toSchemaFile(tableName string, rows int64) schemaFile {
	return schemaFile{Name: tableName, Columns: m.columns, Rows: rows}
}
