package catalog

import "strings"

// Semantic field types. Remote schema types are mapped onto this set.
const (
	TypeText      = "text"
	TypeEnum      = "enum"
	TypeNumeric   = "numeric"
	TypeInteger   = "integer"
	TypeBoolean   = "boolean"
	TypeDate      = "date"
	TypeTimestamp = "timestamp"
	TypeUUID      = "uuid"
	TypeJSON      = "json"
)

type Field struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	DisplayName string   `json:"displayName"`
	EnumValues  []string `json:"enumValues,omitempty"`
}

// IsNumeric returns true for fields that can back a measure.
func (f Field) IsNumeric() bool {
	return f.Type == TypeNumeric || f.Type == TypeInteger
}

// IsCategorical returns true for fields that can back a dimension.
func (f Field) IsCategorical() bool {
	switch f.Type {
	case TypeText, TypeEnum, TypeDate, TypeTimestamp, TypeBoolean:
		return true
	}
	return false
}

// IsTemporal returns true for date and timestamp fields.
func (f Field) IsTemporal() bool {
	return f.Type == TypeDate || f.Type == TypeTimestamp
}

var pgTypeMap = map[string]string{
	"character varying":           TypeText,
	"text":                        TypeText,
	"integer":                     TypeInteger,
	"bigint":                      TypeInteger,
	"numeric":                     TypeNumeric,
	"real":                        TypeNumeric,
	"double precision":            TypeNumeric,
	"boolean":                     TypeBoolean,
	"timestamp with time zone":    TypeTimestamp,
	"timestamp without time zone": TypeTimestamp,
	"date":                        TypeDate,
	"uuid":                        TypeUUID,
	"jsonb":                       TypeJSON,
	"json":                        TypeJSON,
}

// MapPostgresType maps a Postgres type name to the semantic type set.
// Unknown types fall back to text.
func MapPostgresType(pgType string) string {
	if t, ok := pgTypeMap[pgType]; ok {
		return t
	}
	return TypeText
}

// FormatDisplayName converts a snake_case column name to a display name,
// e.g. "outdoor_humidity" -> "Outdoor Humidity".
func FormatDisplayName(column string) string {
	words := strings.Split(column, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
