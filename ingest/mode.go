package ingest

import "github.com/riftcolumn/lineingest/token"

// Mode is the ingest core's current handler set, realized as a single tag
// rather than four separate function-pointer fields. A mode transition is
// one assignment, so the four-handlers-change-together invariant holds by
// construction — there is no way to swap only one of the four.
type Mode int8

const (
	// ModeUnbound is the initial mode, before any MEASUREMENT has bound a
	// writer for the current line.
	ModeUnbound Mode = iota
	// ModeAppend writes rows into an already-cached writer.
	ModeAppend
	// ModeNewTable accumulates columnNameType for a table that does not
	// exist yet.
	ModeNewTable
	// ModeSkipLine discards every remaining event for the current line.
	ModeSkipLine
)

type lineEndFunc func(p *Parser, cache token.Cache)
type fieldNameFunc func(p *Parser, tok token.Token)
type fieldValueFunc func(p *Parser, tok token.Token, cache token.Cache)

// handlers bundles the four per-mode functions: line-end, field-name,
// field-value, tag-value. TAG_NAME reuses fieldName since tag and field
// names share a handler — only their values diverge.
type handlers struct {
	lineEnd    lineEndFunc
	fieldName  fieldNameFunc
	fieldValue fieldValueFunc
	tagValue   fieldValueFunc
}

func noopLineEnd(p *Parser, cache token.Cache)                     {}
func noopFieldName(p *Parser, tok token.Token)                     {}
func noopFieldValue(p *Parser, tok token.Token, cache token.Cache) {}

// dispatchTable is a static 4×4 table in place of a per-instance
// function-pointer quartet. Indexed directly by Mode.
var dispatchTable = [...]handlers{
	ModeUnbound: {
		lineEnd:    noopLineEnd,
		fieldName:  noopFieldName,
		fieldValue: noopFieldValue,
		tagValue:   noopFieldValue,
	},
	ModeAppend: {
		lineEnd:    appendLineEnd,
		fieldName:  appendFieldName,
		fieldValue: appendFieldValue,
		tagValue:   appendTagValue,
	},
	ModeNewTable: {
		lineEnd:    newTableLineEnd,
		fieldName:  newTableFieldName,
		fieldValue: newTableFieldValue,
		tagValue:   newTableTagValue,
	},
	ModeSkipLine: {
		lineEnd:    noopLineEnd,
		fieldName:  noopFieldName,
		fieldValue: noopFieldValue,
		tagValue:   noopFieldValue,
	},
}
