package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList список строк, хранимый в колонке JSONB (теги видео,
// теги планов, список прав и т.п.).
type StringList []string

// Value реализует driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan реализует sql.Scanner.
func (s *StringList) Scan(src any) error {
	if src == nil {
		*s = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// Contains проверяет наличие значения в списке.
func (s StringList) Contains(value string) bool {
	for _, item := range s {
		if item == value {
			return true
		}
	}
	return false
}
