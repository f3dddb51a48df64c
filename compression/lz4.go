package compression

import (
	"bytes"

	"github.com/pierrec/lz4/v4"
)

func CompressLz4(src []byte, output *bytes.Buffer) error {
	zw := lz4.NewWriter(output)

	zw.Write(src)
	flushErr := zw.Flush()

	if flushErr != nil {
		return flushErr
	}

	return zw.Close()
}

// DecompressLz4 reverses CompressLz4, for the storage engine to replay a
// table's committed segments back into memory.
func DecompressLz4(src []byte, output *bytes.Buffer) error {
	zr := lz4.NewReader(bytes.NewReader(src))

	_, err := output.ReadFrom(zr)
	return err
}
