// Package valuetype infers the line-protocol column type of a raw token.
// Rules are taken verbatim from CairoLineProtoParser.getValueType.
package valuetype

import "github.com/riftcolumn/lineingest/coltype"

// Classify inspects the last character of a raw token (including any
// surrounding quotes or integer suffix) and returns the inferred column
// type, or coltype.Invalid if the token cannot be classified (an
// incorrectly quoted string).
func Classify(tok string) coltype.ColumnType {
	n := len(tok)
	if n == 0 {
		return coltype.Invalid
	}

	switch tok[n-1] {
	case 'i':
		// integer suffix form, e.g. "3i" — the numeric part excludes the suffix.
		return coltype.LONG
	case 'e', 't', 'T', 'f', 'F':
		// covers "true", "false", and bare t/T/f/F.
		return coltype.BOOLEAN
	case '"':
		if n < 2 || tok[0] != '"' {
			return coltype.Invalid
		}
		return coltype.STRING
	default:
		return coltype.DOUBLE
	}
}

// IsTrue implements the BOOLEAN truthiness rule: true iff the first
// character is 't' or 'T'.
func IsTrue(tok string) bool {
	if len(tok) == 0 {
		return false
	}
	c := tok[0]
	return c == 't' || c == 'T'
}
