package storage

import "time"

// SystemClock is the MicrosecondClock the ingest core falls back to when a
// line has no explicit timestamp field.
type SystemClock struct{}

func (SystemClock) GetTicks() int64 {
	return time.Now().UnixMicro()
}
