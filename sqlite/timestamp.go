package sqlite

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// timestampLayout is fixed width with nanoseconds and a UTC "Z", so
// comparing stored strings orders them in time.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// timestamp stores a time.Time as TEXT in timestampLayout.
type timestamp time.Time

// Value implements driver.Valuer.
func (t timestamp) Value() (driver.Value, error) {
	return time.Time(t).UTC().Format(timestampLayout), nil
}

// Scan implements sql.Scanner.
func (t *timestamp) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case time.Time:
		*t = timestamp(v)
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("timestamp: unsupported type %T", src)
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", s, err)
	}
	*t = timestamp(parsed)
	return nil
}
