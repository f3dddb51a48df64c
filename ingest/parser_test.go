package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/riftcolumn/lineingest/coltype"
	"github.com/riftcolumn/lineingest/lineproto"
	"github.com/riftcolumn/lineingest/storage"
)

// schemaSnapshot mirrors storage's unexported schemaFile shape, just enough
// to assert against the JSON a writer persists on Commit.
type schemaSnapshot struct {
	Name    string `json:"name"`
	Columns []struct {
		Name string            `json:"name"`
		Type coltype.ColumnType `json:"type"`
	} `json:"columns"`
	Rows int64 `json:"rows"`
}

func readSchema(t *testing.T, dir, table string) schemaSnapshot {
	t.Helper()
	body, err := os.ReadFile(filepath.Join(dir, table, "schema.json"))
	if err != nil {
		t.Fatalf("read schema for %s: %v", table, err)
	}
	var snap schemaSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("unmarshal schema for %s: %v", table, err)
	}
	return snap
}

func newTestParser(dir string) (*Parser, *lineproto.Lexer) {
	engine := storage.New(storage.Config{StoragePath: dir})
	p := New(Config{DefaultSymbolCapacity: 128}, engine, nil, storage.MicrosTimestampAdapter{}, storage.SystemClock{})
	return p, lineproto.NewLexer()
}

func feed(p *Parser, lex *lineproto.Lexer, line string) {
	lex.Feed(line, p)
}

func TestNewTableWithTypedFieldsAndQuotedString(t *testing.T) {
	dir := t.TempDir()
	p, lex := newTestParser(dir)

	feed(p, lex, `cpu,host=A load=0.5,count=3i,active=true,label="ok" 1000000`)
	p.CommitAll()

	snap := readSchema(t, dir, "cpu")
	if snap.Rows != 1 {
		t.Fatalf("rows = %d, want 1", snap.Rows)
	}

	want := map[string]coltype.ColumnType{
		"host":      coltype.SYMBOL,
		"load":      coltype.DOUBLE,
		"count":     coltype.LONG,
		"active":    coltype.BOOLEAN,
		"label":     coltype.STRING,
		"timestamp": coltype.TIMESTAMP,
	}
	if len(snap.Columns) != len(want) {
		t.Fatalf("got %d columns, want %d: %+v", len(snap.Columns), len(want), snap.Columns)
	}
	for _, c := range snap.Columns {
		wt, ok := want[c.Name]
		if !ok {
			t.Errorf("unexpected column %s", c.Name)
			continue
		}
		if c.Type != wt {
			t.Errorf("column %s type = %s, want %s", c.Name, c.Type, wt)
		}
	}
}

func TestExistingTableSchemaExtension(t *testing.T) {
	dir := t.TempDir()
	p, lex := newTestParser(dir)

	feed(p, lex, `cpu,host=A load=0.5 1000000`)
	feed(p, lex, `cpu,host=A load=0.6,error=1i 1000001`)
	p.CommitAll()

	snap := readSchema(t, dir, "cpu")
	if snap.Rows != 2 {
		t.Fatalf("rows = %d, want 2", snap.Rows)
	}

	found := false
	for _, c := range snap.Columns {
		if c.Name == "error" {
			found = true
			if c.Type != coltype.LONG {
				t.Errorf("error column type = %s, want LONG", c.Type)
			}
		}
	}
	if !found {
		t.Fatalf("expected error column to be added, got %+v", snap.Columns)
	}
}

func TestTypeMismatchSkipsLineWithoutCorruptingSchema(t *testing.T) {
	dir := t.TempDir()
	p, lex := newTestParser(dir)

	feed(p, lex, `cpu,host=A load=0.5 1000000`)
	feed(p, lex, `cpu,host=A load=5i 1000001`) // load is DOUBLE, 5i is LONG
	feed(p, lex, `cpu,host=A load=0.7 1000002`)
	p.CommitAll()

	snap := readSchema(t, dir, "cpu")
	if snap.Rows != 2 {
		t.Fatalf("rows = %d, want 2 (mismatched line must be skipped entirely)", snap.Rows)
	}
	for _, c := range snap.Columns {
		if c.Name == "load" && c.Type != coltype.DOUBLE {
			t.Errorf("load column type changed to %s, want DOUBLE", c.Type)
		}
	}
}

func TestBadTimestampDropsRowWithoutPanicking(t *testing.T) {
	dir := t.TempDir()
	p, lex := newTestParser(dir)

	feed(p, lex, `cpu,host=A load=0.5 1000000`)
	feed(p, lex, `cpu,host=A load=0.6 not-a-number`)
	p.CommitAll()

	snap := readSchema(t, dir, "cpu")
	if snap.Rows != 1 {
		t.Fatalf("rows = %d, want 1 (bad-timestamp line must not append)", snap.Rows)
	}
}

func TestTableChurnGroupsCommitsAcrossTables(t *testing.T) {
	dir := t.TempDir()
	p, lex := newTestParser(dir)

	feed(p, lex, `cpu,host=A load=0.5 1000000`)
	feed(p, lex, `mem,host=A used=10i 1000001`)
	feed(p, lex, `cpu,host=A load=0.6 1000002`)
	p.CommitAll()

	cpuSnap := readSchema(t, dir, "cpu")
	if cpuSnap.Rows != 2 {
		t.Errorf("cpu rows = %d, want 2", cpuSnap.Rows)
	}
	memSnap := readSchema(t, dir, "mem")
	if memSnap.Rows != 1 {
		t.Errorf("mem rows = %d, want 1", memSnap.Rows)
	}
}

func TestErrorAbandonsLineWithoutLineEnd(t *testing.T) {
	dir := t.TempDir()
	p, lex := newTestParser(dir)

	feed(p, lex, `cpu,host=A load=0.5 1000000`)
	feed(p, lex, `cpu load`) // missing '=' -> lexer reports OnError, no OnLineEnd
	feed(p, lex, `cpu,host=A load=0.6 1000001`)
	p.CommitAll()

	snap := readSchema(t, dir, "cpu")
	if snap.Rows != 2 {
		t.Fatalf("rows = %d, want 2 (the errored line must not leave partial state)", snap.Rows)
	}
	if !p.scratch.empty() {
		t.Errorf("scratch buffers not empty after OnError")
	}
}

func TestCloseReleasesCachedWriters(t *testing.T) {
	dir := t.TempDir()
	p, lex := newTestParser(dir)

	feed(p, lex, `cpu,host=A load=0.5 1000000`)
	feed(p, lex, `mem,host=A used=10i 1000001`)
	p.CommitAll()

	if err := p.Close(); err != nil {
		t.Fatalf("Close() returned %v, want nil", err)
	}
}
