package columnio

import (
	"errors"
	"strconv"

	"github.com/riftcolumn/lineingest/coltype"
	"github.com/riftcolumn/lineingest/valuetype"
)

// errBadCast is a singleton sentinel, mirroring the original's
// BadCastException.INSTANCE — the
// cast-failure path must not allocate.
var errBadCast = errors.New("columnio: bad cast")

// ErrBadCast reports that a cast error occurred during Put. The caller
// must cancel the whole row, not just the column.
func ErrBadCast() error {
	return errBadCast
}

// IsBadCast reports whether err is the cast-failure sentinel.
func IsBadCast(err error) bool {
	return errors.Is(err, errBadCast)
}

// Setter writes a raw token into row at the given column index, casting it
// per the column's type. A non-nil error is always errBadCast.
type Setter func(row Row, index int, value string) error

func putLong(row Row, index int, value string) error {
	// trailing character is the "i" integer suffix; exclude it.
	if len(value) == 0 {
		return errBadCast
	}
	n, err := strconv.ParseInt(value[:len(value)-1], 10, 64)
	if err != nil {
		return errBadCast
	}
	row.PutLong(index, n)
	return nil
}

func putBoolean(row Row, index int, value string) error {
	row.PutBool(index, valuetype.IsTrue(value))
	return nil
}

func putStr(row Row, index int, value string) error {
	// strip the surrounding quotes.
	if len(value) < 2 {
		return errBadCast
	}
	row.PutStr(index, value[1:len(value)-1])
	return nil
}

func putSym(row Row, index int, value string) error {
	row.PutSym(index, value)
	return nil
}

func putDouble(row Row, index int, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return errBadCast
	}
	row.PutDouble(index, f)
	return nil
}

// dispatch is the constant lookup table keyed by column type code. An
// array, not a map, so the hot append path stays a
// direct index instead of a hash lookup.
var dispatch = [...]Setter{
	coltype.LONG:    putLong,
	coltype.BOOLEAN: putBoolean,
	coltype.STRING:  putStr,
	coltype.SYMBOL:  putSym,
	coltype.DOUBLE:  putDouble,
}

// Put writes value into row at index, casting per typ. It never panics on
// malformed input — a cast failure returns ErrBadCast().
func Put(row Row, index int, typ coltype.ColumnType, value string) error {
	return dispatch[typ](row, index, value)
}
