package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// maxMatchKey matches the size of the indexed match_key column
const maxMatchKey = 255

// JSONValue wraps gorm.io/datatypes.JSON so the column type can follow the dialect
type JSONValue struct {
	datatypes.JSON
}

// NewJSONValue marshals v into a JSONValue
func NewJSONValue(v interface{}) (JSONValue, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return JSONValue{}, err
	}
	return JSONValue{JSON: datatypes.JSON(raw)}, nil
}

// Value promotes the embedded JSON's Value method
func (j JSONValue) Value() (driver.Value, error) {
	return j.JSON.Value()
}

// Scan reads the stored JSON text. Drivers that apply numeric affinity hand
// back bare scalars, which are re-encoded as JSON.
func (j *JSONValue) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64, float64, bool:
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		j.JSON = datatypes.JSON(raw)
		return nil
	case nil:
		j.JSON = datatypes.JSON("null")
		return nil
	}
	return j.JSON.Scan(value)
}

// Decode unmarshals the stored value into a generic Go value
func (j JSONValue) Decode() (interface{}, error) {
	var v interface{}
	if len(j.JSON) == 0 {
		return nil, nil
	}
	err := json.Unmarshal(j.JSON, &v)
	return v, err
}

// MatchKey returns the canonical text used by equality filters.
// Strings match on their raw text, other scalars on their JSON text.
// Objects, arrays and over-long strings are not filterable and yield "".
func (j JSONValue) MatchKey() string {
	raw := bytes.TrimSpace(j.JSON)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '{', '[':
		return ""
	case '"':
		s, err := strconv.Unquote(string(raw))
		if err != nil {
			var decoded string
			if json.Unmarshal(raw, &decoded) != nil {
				return ""
			}
			s = decoded
		}
		if len(s) > maxMatchKey {
			return ""
		}
		return s
	}

	if len(raw) > maxMatchKey {
		return ""
	}
	return string(raw)
}

// GormDBDataType ensures the correct data type is used for each database driver.
// MSSQL does not support the 'json' data type, and a SQLite JSON column has
// numeric affinity, so both store plain text.
func (JSONValue) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "TEXT"
	}
	return "TEXT"
}
