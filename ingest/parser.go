// Package ingest implements the stateful, event-driven line-protocol
// ingest core: mode-dependent dispatch, on-the-fly schema evolution, and
// commit grouping over a downstream storage.Engine.
package ingest

import (
	"log"
	"log/slog"

	"github.com/riftcolumn/lineingest/coltype"
	"github.com/riftcolumn/lineingest/columnio"
	"github.com/riftcolumn/lineingest/lineproto"
	"github.com/riftcolumn/lineingest/storage"
	"github.com/riftcolumn/lineingest/token"
	"github.com/riftcolumn/lineingest/valuetype"
	"github.com/riftcolumn/lineingest/writercache"
	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

// Config holds table-creation defaults left to configuration: a plain
// struct passed to New, no flag/env framework.
type Config struct {
	DefaultSymbolCacheFlag bool
	DefaultSymbolCapacity  int
}

// Parser is the ingest state machine. One Parser is owned by
// exactly one caller and is never used from more than one
// goroutine at a time.
type Parser struct {
	config Config

	engine           storage.Engine
	securityCtx      storage.SecurityContext
	timestampAdapter storage.TimestampAdapter
	clock            storage.MicrosecondClock

	pathBuf   *storage.PathBuffer
	appendMem *storage.AppendMemory

	writerCache *writercache.Cache
	commitList  *writercache.CommitList

	scratch scratch

	mode Mode
	// cacheEntryIndex is 0 when no entry is bound for the current line,
	// negative when one is. Checked explicitly
	// against 0 rather than relying on Handle.Present(), so a brand-new,
	// completely empty cache's "insert at slot 0" result is never mistaken
	// for "same table as last line" on the very first line ever seen.
	cacheEntryIndex writercache.Handle

	writer      storage.Writer
	metadata    storage.RecordMetadata
	columnCount int
	columnIndex int
	columnType  coltype.ColumnType
	columnName  token.Address
	tableName   token.Address
}

// New builds a Parser bound to the given storage collaborators.
func New(config Config, engine storage.Engine, securityCtx storage.SecurityContext, timestampAdapter storage.TimestampAdapter, clock storage.MicrosecondClock) *Parser {
	return &Parser{
		config:           config,
		engine:           engine,
		securityCtx:      securityCtx,
		timestampAdapter: timestampAdapter,
		clock:            clock,
		pathBuf:          storage.NewPathBuffer(),
		appendMem:        storage.NewAppendMemory(),
		writerCache:      writercache.New(),
		commitList:       writercache.NewCommitList(),
		mode:             ModeUnbound,
	}
}

// OnEvent consumes one tokenizer event. tok carries both the
// event's resolved text and its cache address; cache resolves addresses
// retained from earlier in the line (field names awaiting a value,
// explicit timestamps).
func (p *Parser) OnEvent(kind lineproto.EventKind, tok token.Token, cache token.Cache) {
	switch kind {
	case lineproto.EvtMeasurement:
		p.onMeasurement(tok)
	case lineproto.EvtFieldName, lineproto.EvtTagName:
		dispatchTable[p.mode].fieldName(p, tok)
	case lineproto.EvtTagValue:
		dispatchTable[p.mode].tagValue(p, tok, cache)
	case lineproto.EvtFieldValue:
		dispatchTable[p.mode].fieldValue(p, tok, cache)
	case lineproto.EvtTimestamp:
		p.scratch.columnValues = append(p.scratch.columnValues, tok.Addr)
	}
}

// onMeasurement handles the MEASUREMENT event directly, the one event
// never delegated through the mode dispatch table.
func (p *Parser) onMeasurement(tok token.Token) {
	wrtIndex := p.writerCache.KeyIndex(tok.Text)

	if p.cacheEntryIndex != 0 && wrtIndex == p.cacheEntryIndex {
		if p.writer != nil {
			p.mode = ModeAppend
		} else {
			p.initCacheEntry(tok, p.writerCache.ValueAt(wrtIndex))
		}
		return
	}

	p.switchTable(tok, wrtIndex)
}

func (p *Parser) switchTable(tok token.Token, wrtIndex writercache.Handle) {
	if p.cacheEntryIndex != 0 {
		prev := p.writerCache.ValueAt(p.cacheEntryIndex)
		if prev.Writer != nil {
			p.commitList.Add(prev.Writer)
		}
	}

	var entry *writercache.Entry
	if wrtIndex.Present() {
		entry = p.writerCache.ValueAt(wrtIndex)
	} else {
		entry = &writercache.Entry{}
		wrtIndex = p.writerCache.PutAt(wrtIndex, tok.Text, entry)
	}

	p.cacheEntryIndex = wrtIndex

	if entry.Writer != nil {
		p.createState(entry)
	} else {
		p.initCacheEntry(tok, entry)
	}
}

// initCacheEntry drives a cache entry's lifecycle.
func (p *Parser) initCacheEntry(tok token.Token, entry *writercache.Entry) {
	switch entry.State {
	case writercache.StateInitial:
		status, err := p.engine.GetStatus(p.securityCtx, p.pathBuf, tok.Text)
		if err != nil {
			log.Printf("ingest: status check for %s failed: %s", tok.Text, err.Error())
			entry.State = writercache.StateUnusable
			p.mode = ModeSkipLine
			return
		}

		switch status {
		case storage.TableExists:
			entry.State = writercache.StateExists
			p.cacheWriter(entry, tok)
		case storage.TableDoesNotExist:
			p.tableName = tok.Addr
			p.mode = ModeNewTable
		default:
			entry.State = writercache.StateUnusable
			p.mode = ModeSkipLine
		}
	case writercache.StateExists:
		p.cacheWriter(entry, tok)
	default:
		p.mode = ModeSkipLine
	}
}

func (p *Parser) cacheWriter(entry *writercache.Entry, tok token.Token) {
	w, err := p.engine.GetWriter(p.securityCtx, tok.Text)
	if err != nil {
		log.Printf("ingest: acquire writer for %s failed: %s", tok.Text, err.Error())
		p.mode = ModeSkipLine
		return
	}

	entry.Writer = w
	p.tableName = tok.Addr
	p.createState(entry)
	slog.Info("cached writer", "name", tok.Text)
}

func (p *Parser) createState(entry *writercache.Entry) {
	p.writer = entry.Writer
	p.metadata = p.writer.GetMetadata()
	p.columnCount = p.metadata.GetColumnCount()
	p.mode = ModeAppend
}

// appendFieldName resolves a field or tag name against the cached writer's
// metadata.
func appendFieldName(p *Parser, tok token.Token) {
	idx := p.metadata.GetColumnIndexQuiet(tok.Text)
	if idx > -1 {
		p.columnIndex = idx
		p.columnType = p.metadata.GetColumnType(idx)
		return
	}
	p.columnName = tok.Addr
	p.columnType = coltype.Invalid
}

func appendFieldValue(p *Parser, tok token.Token, cache token.Cache) {
	vt := valuetype.Classify(tok.Text)
	if vt == coltype.Invalid {
		p.mode = ModeSkipLine
		return
	}
	p.appendValue(tok, cache, vt)
}

func appendTagValue(p *Parser, tok token.Token, cache token.Cache) {
	p.appendValue(tok, cache, coltype.SYMBOL)
}

// appendValue resolves a field or tag value in APPEND mode: new column,
// matching type, or mismatch.
func (p *Parser) appendValue(tok token.Token, cache token.Cache, valueType coltype.ColumnType) {
	if p.columnType == coltype.Invalid {
		name := cache.Get(p.columnName)
		if err := p.writer.AddColumn(name, valueType); err != nil {
			log.Printf("ingest: add column %s on table %s failed: %s", name, p.writer.GetName(), err.Error())
			p.mode = ModeSkipLine
			return
		}
		idx := p.columnCount
		p.columnCount++
		p.scratch.columnIndexAndType = append(p.scratch.columnIndexAndType, indexType{index: idx, typ: valueType})
		p.scratch.columnValues = append(p.scratch.columnValues, tok.Addr)
		return
	}

	if p.columnType == valueType {
		p.scratch.columnIndexAndType = append(p.scratch.columnIndexAndType, indexType{index: p.columnIndex, typ: valueType})
		p.scratch.columnValues = append(p.scratch.columnValues, tok.Addr)
		return
	}

	color.Yellow(" !!! type mismatch [table=%s][column=%s][columnType=%s][valueType=%s]",
		p.writer.GetName(), p.metadata.GetColumnName(p.columnIndex), p.columnType.String(), valueType.String())
	p.mode = ModeSkipLine
}

// newTableFieldName records the column name address, type unknown until
// the paired value arrives.
func newTableFieldName(p *Parser, tok token.Token) {
	p.columnName = tok.Addr
}

func newTableFieldValue(p *Parser, tok token.Token, cache token.Cache) {
	vt := valuetype.Classify(tok.Text)
	if vt == coltype.Invalid {
		p.mode = ModeSkipLine
		return
	}
	p.scratch.columnNameType = append(p.scratch.columnNameType, nameType{nameAddr: p.columnName, typ: vt})
	p.scratch.columnValues = append(p.scratch.columnValues, tok.Addr)
}

func newTableTagValue(p *Parser, tok token.Token, cache token.Cache) {
	p.scratch.columnNameType = append(p.scratch.columnNameType, nameType{nameAddr: p.columnName, typ: coltype.SYMBOL})
	p.scratch.columnValues = append(p.scratch.columnValues, tok.Addr)
}

// createNewRow builds the row for either mode's line-end: wall clock if
// no explicit timestamp was emitted,
// otherwise parse the trailing columnValues entry.
func (p *Parser) createNewRow(cache token.Cache, columnCount int) (storage.Row, bool) {
	valueCount := len(p.scratch.columnValues)
	if valueCount == columnCount {
		return p.writer.NewRow(p.clock.GetTicks()), true
	}

	tsToken := cache.Get(p.scratch.columnValues[valueCount-1])
	micros, err := p.timestampAdapter.GetMicros(tsToken)
	if err != nil {
		log.Printf("ingest: invalid timestamp %q on table %s: %s", tsToken, p.writer.GetName(), err.Error())
		return nil, false
	}
	return p.writer.NewRow(micros), true
}

// appendLineEnd finishes an APPEND-mode line: build the row, write each
// scratched column, append or cancel on a cast failure.
func appendLineEnd(p *Parser, cache token.Cache) {
	n := len(p.scratch.columnIndexAndType)
	row, ok := p.createNewRow(cache, n)
	if !ok {
		return
	}

	for i := 0; i < n; i++ {
		entry := p.scratch.columnIndexAndType[i]
		value := cache.Get(p.scratch.columnValues[i])
		if err := columnio.Put(row, entry.index, entry.typ, value); columnio.IsBadCast(err) {
			spew.Dump("row canceled on cast failure", entry, value)
			row.Cancel()
			return
		}
	}

	if err := row.Append(); err != nil {
		log.Printf("ingest: append row on table %s failed: %s", p.writer.GetName(), err.Error())
	}
}

// newTableLineEnd finishes a NEW_TABLE-mode line: create the table from
// the scratched columns, then append its first row.
func newTableLineEnd(p *Parser, cache token.Cache) {
	structure := newTableStructureAdapter(p, cache)
	if err := p.engine.CreateTable(p.securityCtx, p.appendMem, p.pathBuf, structure); err != nil {
		color.Red(" !!! create table %s failed: %s", cache.Get(p.tableName), err.Error())
		return
	}
	p.appendFirstRowAndCacheWriter(cache)
}

// appendFirstRowAndCacheWriter acquires the writer for a table this line
// just created, caches it, and writes the first row using columnNameType
// as the implicit 0..n-1 column-index source.
func (p *Parser) appendFirstRowAndCacheWriter(cache token.Cache) {
	name := cache.Get(p.tableName)
	w, err := p.engine.GetWriter(p.securityCtx, name)
	if err != nil {
		log.Printf("ingest: acquire writer for new table %s failed: %s", name, err.Error())
		p.mode = ModeSkipLine
		return
	}

	p.writer = w
	p.metadata = w.GetMetadata()
	p.columnCount = p.metadata.GetColumnCount()
	p.writerCache.ValueAt(p.cacheEntryIndex).Writer = w
	p.mode = ModeAppend

	columnCount := len(p.scratch.columnNameType)
	row, ok := p.createNewRow(cache, columnCount)
	if !ok {
		return
	}

	for i := 0; i < columnCount; i++ {
		pair := p.scratch.columnNameType[i]
		value := cache.Get(p.scratch.columnValues[i])
		if err := columnio.Put(row, i, pair.typ, value); columnio.IsBadCast(err) {
			spew.Dump("first row canceled on cast failure", pair, value)
			row.Cancel()
			return
		}
	}

	if err := row.Append(); err != nil {
		log.Printf("ingest: append first row on table %s failed: %s", name, err.Error())
	}
}

// OnLineEnd runs the active mode's line-end handler, then unconditionally
// clears scratch.
func (p *Parser) OnLineEnd(cache token.Cache) {
	dispatchTable[p.mode].lineEnd(p, cache)
	p.scratch.reset()
}

// OnError abandons the current line without running any line-end handler.
func (p *Parser) OnError(position int, state int, code int) {
	p.scratch.reset()
}

// CommitAll commits the active writer and every writer on the commit
// list, then clears the list.
func (p *Parser) CommitAll() {
	if p.writer != nil {
		if err := p.writer.Commit(); err != nil {
			log.Printf("ingest: commit %s failed: %s", p.writer.GetName(), err.Error())
		}
	}
	for _, w := range p.commitList.Writers() {
		if err := w.Commit(); err != nil {
			log.Printf("ingest: commit %s failed: %s", w.GetName(), err.Error())
		}
	}
	p.commitList.Clear()
}

// Close releases the path buffer, append memory, and every cached writer.
// The Parser is unusable afterward.
func (p *Parser) Close() error {
	p.pathBuf.Close()
	p.appendMem.Close()

	var firstErr error
	p.writerCache.Each(func(entry *writercache.Entry) {
		if entry.Writer == nil {
			return
		}
		if err := entry.Writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}
