package util

import (
	"fmt"
	"time"
)

// Datetime is the format to use anywhere we need to output a date+time to an user.
func Datetime(iface interface{}) string {
	t, ok := asTime(iface)
	if !ok {
		return ""
	}

	return t.Format("2006-01-02 15h04 MST")
}

// Date is the format to use anywhere we need to output a date to an user.
func Date(iface interface{}) string {
	t, ok := asTime(iface)
	if !ok {
		return ""
	}

	return t.Format("2006-01-02")
}

// asTime returns false for the zero time, which is never shown.
func asTime(iface interface{}) (time.Time, bool) {
	var t time.Time
	switch iface := iface.(type) {
	case time.Time:
		t = iface
	case TimeAsTimestamp:
		if iface.IsZero() {
			return time.Time{}, false
		}
		t = iface.Time()
	default:
		panic(fmt.Errorf("unexpected type %T", iface))
	}

	return t, !t.IsZero()
}
