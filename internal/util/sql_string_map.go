package util

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringMapAsJSON is a flat string map stored in a JSON(B) column.
type StringMapAsJSON map[string]string

func (m StringMapAsJSON) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(map[string]string(m))
}

func (m StringMapAsJSON) Get(key string) string {
	return m[key]
}

func (m *StringMapAsJSON) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		*m = StringMapAsJSON{}
		return nil
	case []byte:
		return json.Unmarshal(src, (*map[string]string)(m))
	case string:
		return json.Unmarshal([]byte(src), (*map[string]string)(m))
	default:
		return fmt.Errorf("expected []byte or string, got %T", src)
	}
}
