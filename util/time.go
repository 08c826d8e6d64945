package util

import (
	"strings"
	"time"
)

// RFC3339 formats time.Time to RFC3339Nano string with fixed-width
// nanoseconds.
func RFC3339(t time.Time) string {
	s := t.Format("2006-01-02T15:04:05.999999999")

	if len(s) < 29 { //nolint:gomnd //...
		s += strings.Repeat("0", 29-len(s))
	}

	return s + t.Format("Z07:00")
}
