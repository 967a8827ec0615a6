package util

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// TimeAsTimestamp is stored as an UNIX timestamp but used as a time.Time.
// The zero UNIX timestamp is treated as "never".
type TimeAsTimestamp time.Time

func (t TimeAsTimestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return int64(0), nil
	}

	return time.Time(t).Unix(), nil
}

func (t TimeAsTimestamp) Time() time.Time {
	return time.Time(t)
}

func (t TimeAsTimestamp) IsZero() bool {
	return time.Time(t).IsZero() || time.Time(t).Unix() == 0
}

func (t *TimeAsTimestamp) Scan(src interface{}) error {
	var unix int64

	switch src := src.(type) {
	case nil:
		*t = TimeAsTimestamp{}
		return nil
	case int64:
		unix = src
	case []byte:
		tmp, err := strconv.ParseInt(string(src), 10, 64)
		if err != nil {
			return err
		}
		unix = tmp
	case string:
		tmp, err := strconv.ParseInt(src, 10, 64)
		if err != nil {
			return err
		}
		unix = tmp
	default:
		return fmt.Errorf("expected int64, []byte or string, got %T", src)
	}

	if unix == 0 {
		*t = TimeAsTimestamp{}
		return nil
	}

	*t = TimeAsTimestamp(time.Unix(unix, 0).UTC())

	return nil
}
