package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

var (
	_ sql.Scanner   = (*Assessment)(nil)
	_ driver.Valuer = Assessment{}
	_ sql.Scanner   = (*BiomarkerData)(nil)
	_ driver.Valuer = BiomarkerData{}
)

// scanJSONB scans a JSONB column into dest. It accepts the []byte and string
// representations different drivers hand back.
func scanJSONB(dest any, value any) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, dest)
}

func valueJSONB(v any) (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner for the stored assessment payload.
func (a *Assessment) Scan(value any) error {
	return scanJSONB(a, value)
}

// Value implements driver.Valuer for the stored assessment payload.
func (a Assessment) Value() (driver.Value, error) {
	return valueJSONB(a)
}

// Scan implements sql.Scanner for a lab result stored as JSONB.
func (b *BiomarkerData) Scan(value any) error {
	return scanJSONB(b, value)
}

// Value implements driver.Valuer for a lab result stored as JSONB.
func (b BiomarkerData) Value() (driver.Value, error) {
	return valueJSONB(b)
}
