package storage

import (
	"testing"

	"github.com/riftcolumn/lineingest/coltype"
)

// fakeTableStructure is the minimal TableStructure a test needs to drive
// CreateTable directly, without going through the ingest package's adapter.
type fakeTableStructure struct {
	name    string
	columns []columnDef
}

func (f *fakeTableStructure) ColumnCount() int                  { return len(f.columns) }
func (f *fakeTableStructure) ColumnName(i int) string            { return f.columns[i].Name }
func (f *fakeTableStructure) ColumnType(i int) coltype.ColumnType { return f.columns[i].Type }
func (f *fakeTableStructure) TimestampIndex() int                { return -1 }
func (f *fakeTableStructure) PartitionBy() PartitionBy           { return PartitionNone }
func (f *fakeTableStructure) IndexedFlag(i int) bool              { return false }
func (f *fakeTableStructure) IndexBlockCapacity(i int) int        { return 0 }
func (f *fakeTableStructure) SymbolCacheFlag(i int) bool          { return true }
func (f *fakeTableStructure) SymbolCapacity(i int) int            { return 128 }
func (f *fakeTableStructure) TableName() string                   { return f.name }

func TestReplaySegmentsCountsCommittedRows(t *testing.T) {
	dir := t.TempDir()
	engine := New(Config{StoragePath: dir})

	structure := &fakeTableStructure{
		name:    "cpu",
		columns: []columnDef{{Name: "host", Type: coltype.SYMBOL}, {Name: "load", Type: coltype.DOUBLE}},
	}
	if err := engine.CreateTable(nil, nil, nil, structure); err != nil {
		t.Fatalf("CreateTable: %s", err.Error())
	}

	w, err := engine.GetWriter(nil, "cpu")
	if err != nil {
		t.Fatalf("GetWriter: %s", err.Error())
	}

	for i := 0; i < 3; i++ {
		row := w.NewRow(1700000000000000)
		row.PutSym(0, "a")
		row.PutDouble(1, 1.5)
		if appendErr := row.Append(); appendErr != nil {
			t.Fatalf("Append: %s", appendErr.Error())
		}
	}

	if err := w.Commit(); err != nil {
		t.Fatalf("Commit: %s", err.Error())
	}

	n, err := engine.ReplaySegments("cpu")
	if err != nil {
		t.Fatalf("ReplaySegments: %s", err.Error())
	}
	if n != 3 {
		t.Fatalf("ReplaySegments: got %d rows, want 3", n)
	}
}

func TestReplaySegmentsEmptyTableCountsZero(t *testing.T) {
	dir := t.TempDir()
	engine := New(Config{StoragePath: dir})

	structure := &fakeTableStructure{name: "idle", columns: []columnDef{{Name: "v", Type: coltype.DOUBLE}}}
	if err := engine.CreateTable(nil, nil, nil, structure); err != nil {
		t.Fatalf("CreateTable: %s", err.Error())
	}

	n, err := engine.ReplaySegments("idle")
	if err != nil {
		t.Fatalf("ReplaySegments: %s", err.Error())
	}
	if n != 0 {
		t.Fatalf("ReplaySegments: got %d rows, want 0", n)
	}
}
