package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

const (
	DefaultLanguage = "en"
	NoTitle         = "No title available"
)

// Locales maps a locale code to a localized text.
type Locales map[string]string

func (m *Locales) Scan(value any) error {
	*m = nil
	switch t := value.(type) {
	case nil:
		return nil
	case string:
		return json.Unmarshal([]byte(t), m)
	case []byte:
		return json.Unmarshal(t, m)
	default:
		return fmt.Errorf("cannot scan invalid data type %T", value)
	}
}

func (m Locales) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

func (Locales) GormDataType() string {
	return "json"
}

// Get returns the text of locale, then the text of the default language.
func (m Locales) Get(locale string) (string, bool) {
	if s, ok := m[locale]; ok && s != "" {
		return s, true
	}

	if s, ok := m[DefaultLanguage]; ok && s != "" {
		return s, true
	}

	return "", false
}
