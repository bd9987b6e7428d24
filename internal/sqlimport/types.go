package sqlimport

import (
	"regexp"
	"strings"

	"github.com/tordrt/surqlschema/internal/schema"
)

var typeParams = regexp.MustCompile(`\s*\(.*?\)`)

// MapType maps a SQL column type to a field type. ok is false when the type
// is not recognised and any was used instead. Array element types are
// returned as the type parameter of an array field.
func MapType(sqlType string) (t schema.FieldType, typed schema.TypeParam, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(sqlType))

	// MySQL booleans
	if strings.HasPrefix(lower, "tinyint(1)") {
		return schema.Bool, nil, true
	}

	if elem, isArray := strings.CutSuffix(lower, "[]"); isArray {
		elemType, _, elemOK := MapType(elem)
		return schema.Array, schema.TypeName(elemType), elemOK
	}

	base := typeParams.ReplaceAllString(lower, "")
	base = strings.TrimSpace(strings.TrimSuffix(base, " unsigned"))

	switch base {
	case "int", "integer", "int2", "int4", "int8", "smallint", "bigint", "mediumint", "tinyint",
		"serial", "smallserial", "bigserial", "serial4", "serial8", "year":
		return schema.Int, nil, true
	case "bool", "boolean", "bit":
		return schema.Bool, nil, true
	case "real", "float", "float4", "float8", "double", "double precision":
		return schema.Float, nil, true
	case "numeric", "decimal", "money":
		return schema.Decimal, nil, true
	case "char", "varchar", "character", "character varying", "bpchar", "text", "tinytext",
		"mediumtext", "longtext", "citext", "name", "enum", "clob", "nvarchar", "nchar",
		"time", "timetz", "time with time zone", "time without time zone", "inet", "cidr", "macaddr":
		return schema.String, nil, true
	case "date", "datetime", "timestamp", "timestamptz",
		"timestamp with time zone", "timestamp without time zone":
		return schema.Datetime, nil, true
	case "interval":
		return schema.Duration, nil, true
	case "json", "jsonb":
		return schema.Object, nil, true
	case "uuid":
		return schema.UUID, nil, true
	case "bytea", "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary":
		return schema.Bytes, nil, true
	case "geometry", "geography", "point", "linestring", "polygon", "multipoint",
		"multilinestring", "multipolygon", "geometrycollection":
		return schema.Geometry, nil, true
	}

	return affinity(base)
}

// affinity applies SQLite's column affinity rules to unrecognised names
func affinity(base string) (schema.FieldType, schema.TypeParam, bool) {
	upper := strings.ToUpper(base)
	switch {
	case strings.Contains(upper, "INT"):
		return schema.Int, nil, true
	case strings.Contains(upper, "CHAR"), strings.Contains(upper, "CLOB"), strings.Contains(upper, "TEXT"):
		return schema.String, nil, true
	case strings.Contains(upper, "REAL"), strings.Contains(upper, "FLOA"), strings.Contains(upper, "DOUB"):
		return schema.Float, nil, true
	case strings.Contains(upper, "BLOB"):
		return schema.Bytes, nil, true
	}
	return schema.Any, nil, false
}

var (
	intLiteral     = regexp.MustCompile(`^[-+]?\d+$`)
	decimalLiteral = regexp.MustCompile(`^[-+]?\d+(\.\d+)?$`)
	numberLiteral  = regexp.MustCompile(`^[-+]?\d+(\.\d+)?([eE][-+]?\d+)?$`)
)

// MapDefault converts a SQL column default into a literal clause for a field
// of type t. Defaults that are expressions, or literals that do not fit t,
// are not carried over.
func MapDefault(def string, t schema.FieldType) (string, bool) {
	literal, quoted := unquoteDefault(def)
	if literal == "" && !quoted {
		return "", false
	}

	switch t {
	case schema.Bool:
		switch strings.ToLower(literal) {
		case "true", "t", "1", "b'1'":
			return "true", true
		case "false", "f", "0", "b'0'":
			return "false", true
		}
	case schema.Int:
		if intLiteral.MatchString(literal) {
			return strings.TrimPrefix(literal, "+"), true
		}
	case schema.Float, schema.Number:
		if numberLiteral.MatchString(literal) {
			return strings.TrimPrefix(literal, "+"), true
		}
	case schema.Decimal:
		if decimalLiteral.MatchString(literal) {
			return strings.TrimPrefix(literal, "+") + "dec", true
		}
	case schema.String:
		if quoted || numberLiteral.MatchString(literal) {
			return quote(literal), true
		}
	}
	return "", false
}

// unquoteDefault strips a PostgreSQL cast and the quotes of a string literal.
// quoted reports whether def was a quoted literal.
func unquoteDefault(def string) (literal string, quoted bool) {
	def = strings.TrimSpace(def)

	// PostgreSQL casts, e.g. 'active'::character varying or '-1'::integer
	if i := strings.LastIndex(def, "::"); i > 0 && strings.HasPrefix(def, "'") {
		def = def[:i]
	}
	// PostgreSQL wraps negative numbers, e.g. (-1)
	if len(def) > 2 && def[0] == '(' && def[len(def)-1] == ')' {
		def = strings.TrimSpace(def[1 : len(def)-1])
	}

	if len(def) >= 2 && def[0] == '\'' && def[len(def)-1] == '\'' {
		return strings.ReplaceAll(def[1:len(def)-1], "''", "'"), true
	}
	return def, false
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// enumAssertion restricts a field to the given labels
func enumAssertion(values []string, optional bool) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote(v)
	}
	assert := "$value INSIDE [" + strings.Join(quoted, ", ") + "]"
	if optional {
		assert = "$value == NONE OR " + assert
	}
	return assert
}
