// Package lineproto defines the upstream line-protocol event contract the
// ingest core consumes, plus, for tests and the demo binary only, a
// minimal reference tokenizer that produces it. A real production
// tokenizer is a separate concern — nothing in package ingest depends on
// this one being the lexer used in production, only on the EventKind
// contract below.
package lineproto

// EventKind enumerates the events a line-protocol tokenizer emits, one
// line at a time, terminated by either LineEnd or Error.
type EventKind int8

const (
	// EvtMeasurement carries the table name. Exactly one per line, first.
	EvtMeasurement EventKind = iota
	// EvtTagName/EvtTagValue alternate, zero or more pairs.
	EvtTagName
	EvtTagValue
	// EvtFieldName/EvtFieldValue alternate, zero or more pairs.
	EvtFieldName
	EvtFieldValue
	// EvtTimestamp is optional, at most one, last before line end.
	EvtTimestamp
)

func (k EventKind) String() string {
	switch k {
	case EvtMeasurement:
		return "MEASUREMENT"
	case EvtTagName:
		return "TAG_NAME"
	case EvtTagValue:
		return "TAG_VALUE"
	case EvtFieldName:
		return "FIELD_NAME"
	case EvtFieldValue:
		return "FIELD_VALUE"
	case EvtTimestamp:
		return "TIMESTAMP"
	default:
		return "UNKNOWN"
	}
}
