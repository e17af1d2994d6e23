package entity

import (
	"fmt"
	"time"
)

// TimestampLayout is the persisted date format. It is fixed width, so string
// order equals chronological order and range queries can run on the raw string.
const TimestampLayout = "2006-01-02 15:04:05"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return t, nil
}
