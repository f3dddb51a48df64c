// Package columnio provides the typed column-writer dispatch: a constant
// lookup table keyed by column type code, mapping to a setter that casts a
// raw token into the column's storage representation.
package columnio

// Row is the minimal row-write surface the dispatch table needs. The
// storage engine's concrete row type satisfies this.
type Row interface {
	PutLong(index int, v int64)
	PutBool(index int, v bool)
	PutStr(index int, v string)
	PutSym(index int, v string)
	PutDouble(index int, v float64)
}
