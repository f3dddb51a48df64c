// Command ingestd reads line-protocol text from stdin and ingests it through
// an in-process ingest.Parser backed by a file storage.Engine, printing a
// commit summary for every table touched — a smoke-test harness for the
// ingest core.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"

	"github.com/riftcolumn/lineingest/ingest"
	"github.com/riftcolumn/lineingest/lineproto"
	"github.com/riftcolumn/lineingest/storage"
	"github.com/fatih/color"
)

func main() {
	storagePath := flag.String("storage", "./storage", "directory holding table schemas and segment files")
	durable := flag.Bool("durable", false, "fsync every committed segment")
	replayTable := flag.String("replay", "", "after ingesting, decompress and recount every committed segment for this table")
	flag.Parse()

	if err := os.MkdirAll(*storagePath, 0755); err != nil {
		log.Fatalf("ingestd: create storage dir: %s", err.Error())
	}

	engine := storage.New(storage.Config{
		StoragePath: *storagePath,
		Durable:     *durable,
	})

	parser := ingest.New(
		ingest.Config{
			DefaultSymbolCacheFlag: true,
			DefaultSymbolCapacity:  128,
		},
		engine,
		nil,
		storage.MicrosTimestampAdapter{},
		storage.SystemClock{},
	)
	defer parser.Close()

	lexer := lineproto.NewLexer()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		lexer.Feed(line, parser)
		lines++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("ingestd: read stdin: %s", err.Error())
	}

	parser.CommitAll()

	color.Cyan(" === ingested %d line(s) into %s ===", lines, *storagePath)

	if *replayTable != "" {
		n, err := engine.ReplaySegments(*replayTable)
		if err != nil {
			log.Fatalf("ingestd: replay %s: %s", *replayTable, err.Error())
		}
		color.Cyan(" === replayed %d row(s) from %s's committed segments ===", n, *replayTable)
	}
}
