package lineproto

import (
	"strings"

	"github.com/riftcolumn/lineingest/token"
)

// Handler receives the event stream a Lexer produces, the same three
// operations package ingest.Parser exposes.
type Handler interface {
	OnEvent(kind EventKind, tok token.Token, cache token.Cache)
	OnLineEnd(cache token.Cache)
	OnError(position, state, code int)
}

// Lexer tokenizes newline-delimited line-protocol text into the EventKind
// stream above. It is a reference implementation only — unoptimized,
// split-based, with no support for escaped commas/spaces inside quoted
// strings — good enough to drive tests and the demo CLI, not a production
// tokenizer.
type Lexer struct {
	cache *token.MemCache
}

// NewLexer returns a Lexer with its own token cache, reset between lines.
func NewLexer() *Lexer {
	return &Lexer{cache: token.NewMemCache()}
}

// Feed tokenizes one line and drives handler through its events. The
// cache is reset first, since every token's address is only valid for the
// line that interned it.
func (l *Lexer) Feed(line string, handler Handler) {
	l.cache.Reset()

	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	parts := strings.Split(line, " ")
	if len(parts) == 0 || len(parts) > 3 {
		handler.OnError(0, 0, 1)
		return
	}

	measurementAndTags := strings.Split(parts[0], ",")
	measurement := measurementAndTags[0]
	if measurement == "" {
		handler.OnError(0, 0, 2)
		return
	}

	handler.OnEvent(EvtMeasurement, l.cache.InternToken(measurement), l.cache)

	for _, tag := range measurementAndTags[1:] {
		name, value, ok := cutKV(tag)
		if !ok {
			handler.OnError(len(measurement), 1, 3)
			return
		}
		handler.OnEvent(EvtTagName, l.cache.InternToken(name), l.cache)
		handler.OnEvent(EvtTagValue, l.cache.InternToken(value), l.cache)
	}

	if len(parts) >= 2 && parts[1] != "" {
		for _, fld := range strings.Split(parts[1], ",") {
			name, value, ok := cutKV(fld)
			if !ok {
				handler.OnError(len(parts[0]), 2, 4)
				return
			}
			handler.OnEvent(EvtFieldName, l.cache.InternToken(name), l.cache)
			handler.OnEvent(EvtFieldValue, l.cache.InternToken(value), l.cache)
		}
	}

	if len(parts) == 3 && parts[2] != "" {
		handler.OnEvent(EvtTimestamp, l.cache.InternToken(parts[2]), l.cache)
	}

	handler.OnLineEnd(l.cache)
}

func cutKV(s string) (name, value string, ok bool) {
	idx := strings.IndexByte(s, '=')
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}
