package storage

import (
	"fmt"
	"strconv"
)

// MicrosTimestampAdapter parses an explicit line-protocol timestamp token
// as a plain microsecond integer.
// A malformed token is a parse failure, not a panic.
type MicrosTimestampAdapter struct{}

func (MicrosTimestampAdapter) GetMicros(token string) (int64, error) {
	micros, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("storage: bad timestamp %q: %s", token, err.Error())
	}
	return micros, nil
}
