package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"

	"github.com/riftcolumn/lineingest/compression"
	"github.com/riftcolumn/lineingest/io"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// segment accumulates encoded rows for one table between commits and
// flushes them to a single uuid-named, lz4-compressed file — one file per
// commit rather than per fixed-size block.
type segment struct {
	id  uuid.UUID
	dir string

	pending bytes.Buffer
	rows    int64
}

func newSegment(dir string) *segment {
	return &segment{id: uuid.New(), dir: dir}
}

// appendRow records one already-encoded row. Layout: micros int64, field
// count uint16, field-bytes length uint32, field bytes — a header+payload
// shape without a fixed block size, since rows here vary in width by type.
func (s *segment) appendRow(micros int64, count uint16, fields []byte) {
	var header [14]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(micros))
	binary.LittleEndian.PutUint16(header[8:10], count)
	binary.LittleEndian.PutUint32(header[10:14], uint32(len(fields)))

	s.pending.Write(header[:])
	s.pending.Write(fields)
	s.rows++
}

// flush compresses the pending rows and writes them to a new segment file,
// fsyncing it first when durable is requested.
func (s *segment) flush(durable bool) (path string, err error) {
	if s.pending.Len() == 0 {
		return "", nil
	}

	var compressed bytes.Buffer
	if compErr := compression.CompressLz4(s.pending.Bytes(), &compressed); compErr != nil {
		return "", fmt.Errorf("segment %s: compress: %s", s.id.String(), compErr.Error())
	}

	path = filepath.Join(s.dir, s.id.String()+".seg")

	fr := io.NewFileReader(path)
	if openErr := fr.Open(false); openErr != nil {
		return "", fmt.Errorf("segment %s: open: %s", s.id.String(), openErr.Error())
	}
	defer fr.Close()

	data := compressed.Bytes()
	if writeErr := fr.WriteAt(data, 0, len(data)); writeErr != nil {
		return "", fmt.Errorf("segment %s: write: %s", s.id.String(), writeErr.Error())
	}

	if durable {
		if syncErr := unix.Fsync(int(fr.Raw().Fd())); syncErr != nil {
			return "", fmt.Errorf("segment %s: fsync: %s", s.id.String(), syncErr.Error())
		}
	}

	s.pending.Reset()
	s.id = uuid.New()

	return path, nil
}

// readSegment decompresses a previously flushed segment file, for engines
// that need to replay a table's history.
func readSegment(path string) ([]byte, error) {
	fr := io.NewFileReader(path)
	if openErr := fr.Open(true); openErr != nil {
		return nil, openErr
	}
	defer fr.Close()

	raw, err := fr.Raw().Stat()
	if err != nil {
		return nil, err
	}

	compressed := make([]byte, raw.Size())
	if readErr := fr.ReadAt(compressed, 0, len(compressed)); readErr != nil {
		return nil, readErr
	}

	var out bytes.Buffer
	if decErr := compression.DecompressLz4(compressed, &out); decErr != nil {
		return nil, decErr
	}

	return out.Bytes(), nil
}

// decodeRowCount walks a decompressed segment payload and counts the rows
// framed within it, using the same micros/count/length header appendRow
// wrote.
func decodeRowCount(raw []byte) (int, error) {
	count := 0
	for len(raw) > 0 {
		if len(raw) < 14 {
			return 0, fmt.Errorf("segment: truncated row header (%d bytes left)", len(raw))
		}
		fieldLen := binary.LittleEndian.Uint32(raw[10:14])
		raw = raw[14:]
		if uint32(len(raw)) < fieldLen {
			return 0, fmt.Errorf("segment: truncated row payload (need %d, have %d)", fieldLen, len(raw))
		}
		raw = raw[fieldLen:]
		count++
	}
	return count, nil
}
