package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/riftcolumn/lineingest/coltype"
	"github.com/riftcolumn/lineingest/io"
	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

// writer is the concrete Writer for one table, grounded in the
// config-struct-plus-cached-state shape of manager/manager.go and
// manager/cache, adapted from a fixed-width slab writer to a row-oriented
// one backed by segment files instead of disk slabs.
type writer struct {
	name string
	dir  string
	meta *metadata

	seg     *segment
	rows    int64
	durable bool

	closed bool
}

func newWriter(name, dir string, meta *metadata, durable bool) *writer {
	return &writer{
		name:    name,
		dir:     dir,
		meta:    meta,
		seg:     newSegment(dir),
		durable: durable,
	}
}

func (w *writer) GetMetadata() RecordMetadata {
	return w.meta
}

func (w *writer) NewRow(micros int64) Row {
	return newRow(w, micros)
}

func (w *writer) AddColumn(name string, typ coltype.ColumnType) error {
	if w.meta.GetColumnIndexQuiet(name) >= 0 {
		return fmt.Errorf("writer %s: column %s already exists", w.name, name)
	}
	w.meta.addColumn(name, typ)
	color.Green(" +++ table %s: added column %s (%s)", w.name, name, typ.String())
	return nil
}

// appendEncodedRow is called by row.Append once a row has been fully
// assembled and is safe to keep.
func (w *writer) appendEncodedRow(micros int64, count uint16, fields []byte) {
	w.seg.appendRow(micros, count, fields)
	w.rows++
}

// Commit flushes the pending segment to disk and persists the table's
// schema.json the way manager/meta/meta_manager.go persists schema.Schema,
// the same shape reused here for a row-oriented table instead of a slab
// layout.
func (w *writer) Commit() error {
	segPath, flushErr := w.seg.flush(w.durable)
	if flushErr != nil {
		spew.Dump("writer commit failed, pending row bytes", w.seg.pending.Bytes())
		return fmt.Errorf("writer %s: commit: %s", w.name, flushErr.Error())
	}
	if segPath == "" {
		return nil
	}

	if err := w.persistSchema(); err != nil {
		return fmt.Errorf("writer %s: persist schema: %s", w.name, err.Error())
	}

	color.Yellow(" --- committed table %s: %d rows -> %s", w.name, w.rows, filepath.Base(segPath))
	return nil
}

func (w *writer) persistSchema() error {
	schemaPath := filepath.Join(w.dir, "schema.json")
	body, marshalErr := json.Marshal(w.meta.toSchemaFile(w.name, w.rows))
	if marshalErr != nil {
		return marshalErr
	}

	fr := io.NewFileReader(schemaPath)
	if openErr := fr.Open(false); openErr != nil {
		return openErr
	}
	defer fr.Close()

	return fr.WriteAt(body, 0, len(body))
}

func (w *writer) GetName() string {
	return w.name
}

func (w *writer) Close() error {
	w.closed = true
	return nil
}
