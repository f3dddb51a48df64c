package storage

import (
	"encoding/binary"

	"github.com/riftcolumn/lineingest/bits"
	"github.com/riftcolumn/lineingest/coltype"
)

// row assembles one line-protocol row before it is either appended to the
// writer's pending segment or canceled. Each Put* call encodes a
// (tag, column index, value) triple into a small growing buffer via
// bits.BitWriter, repurposed here for row-oriented, multi-typed values
// instead of fixed-width numeric blocks.
type row struct {
	w      *writer
	micros int64

	fields   bits.BitWriter
	count    uint16
	canceled bool
}

func newRow(w *writer, micros int64) *row {
	buf := make([]byte, 0, 64)
	bw := bits.NewEncodeBuffer(buf, binary.LittleEndian)
	bw.EnableGrowing()
	return &row{w: w, micros: micros, fields: bw}
}

func (r *row) putTag(typ coltype.ColumnType, index int) {
	r.fields.WriteByte(uint8(typ))
	r.fields.PutUint16(uint16(index))
	r.count++
}

func (r *row) PutLong(index int, v int64) {
	r.putTag(coltype.LONG, index)
	r.fields.PutInt64(v)
}

func (r *row) PutBool(index int, v bool) {
	r.putTag(coltype.BOOLEAN, index)
	if v {
		r.fields.WriteByte(1)
	} else {
		r.fields.WriteByte(0)
	}
}

func (r *row) PutStr(index int, v string) {
	r.putBytesColumn(coltype.STRING, index, v)
}

func (r *row) PutSym(index int, v string) {
	r.putBytesColumn(coltype.SYMBOL, index, v)
}

func (r *row) putBytesColumn(typ coltype.ColumnType, index int, v string) {
	r.putTag(typ, index)
	r.fields.PutUint16(uint16(len(v)))
	r.fields.Write([]byte(v))
}

func (r *row) PutDouble(index int, v float64) {
	r.putTag(coltype.DOUBLE, index)
	r.fields.PutFloat64(v)
}

// Append finalizes the row and hands its encoded bytes to the writer's
// pending segment buffer.
func (r *row) Append() error {
	if r.canceled {
		return nil
	}
	r.w.appendEncodedRow(r.micros, r.count, r.fields.Bytes())
	return nil
}

// Cancel discards the row without ever touching the writer's pending
// buffer.
func (r *row) Cancel() {
	r.canceled = true
}
