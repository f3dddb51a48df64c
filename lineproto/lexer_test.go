package lineproto

import (
	"testing"

	"github.com/riftcolumn/lineingest/token"
)

type recordedEvent struct {
	kind EventKind
	text string
}

type recordingHandler struct {
	events    []recordedEvent
	lineEnds  int
	errors    int
}

func (h *recordingHandler) OnEvent(kind EventKind, tok token.Token, cache token.Cache) {
	h.events = append(h.events, recordedEvent{kind: kind, text: tok.Text})
}

func (h *recordingHandler) OnLineEnd(cache token.Cache) {
	h.lineEnds++
}

func (h *recordingHandler) OnError(position, state, code int) {
	h.errors++
}

func TestLexerFeedTypedFields(t *testing.T) {
	lex := NewLexer()
	h := &recordingHandler{}

	lex.Feed(`cpu,host=A load=0.5,count=3i 1700000000000000`, h)

	want := []recordedEvent{
		{EvtMeasurement, "cpu"},
		{EvtTagName, "host"},
		{EvtTagValue, "A"},
		{EvtFieldName, "load"},
		{EvtFieldValue, "0.5"},
		{EvtFieldName, "count"},
		{EvtFieldValue, "3i"},
		{EvtTimestamp, "1700000000000000"},
	}

	if len(h.events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(h.events), len(want), h.events)
	}
	for i, ev := range want {
		if h.events[i] != ev {
			t.Errorf("event %d: got %+v, want %+v", i, h.events[i], ev)
		}
	}
	if h.lineEnds != 1 {
		t.Errorf("lineEnds = %d, want 1", h.lineEnds)
	}
	if h.errors != 0 {
		t.Errorf("errors = %d, want 0", h.errors)
	}
}

func TestLexerFeedNoTagsNoTimestamp(t *testing.T) {
	lex := NewLexer()
	h := &recordingHandler{}

	lex.Feed(`log msg="hello"`, h)

	want := []EventKind{EvtMeasurement, EvtFieldName, EvtFieldValue}
	if len(h.events) != len(want) {
		t.Fatalf("got %d events, want %d", len(h.events), len(want))
	}
	for i, kind := range want {
		if h.events[i].kind != kind {
			t.Errorf("event %d kind = %s, want %s", i, h.events[i].kind, kind)
		}
	}
	if h.events[2].text != `"hello"` {
		t.Errorf("field value = %q, want %q", h.events[2].text, `"hello"`)
	}
}

func TestLexerFeedBlankLineIsNoop(t *testing.T) {
	lex := NewLexer()
	h := &recordingHandler{}

	lex.Feed("   ", h)

	if len(h.events) != 0 || h.lineEnds != 0 || h.errors != 0 {
		t.Errorf("expected no activity for a blank line, got %+v", h)
	}
}

func TestLexerFeedMissingEqualsIsError(t *testing.T) {
	lex := NewLexer()
	h := &recordingHandler{}

	lex.Feed(`cpu load`, h)

	if h.errors != 1 {
		t.Errorf("errors = %d, want 1", h.errors)
	}
	if h.lineEnds != 0 {
		t.Errorf("lineEnds = %d, want 0", h.lineEnds)
	}
}
