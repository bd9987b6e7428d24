package schema

import "strings"

// FieldType is the type tag of a field
type FieldType string

// Field types understood by the renderer
const (
	Any      FieldType = "any"
	Array    FieldType = "array"
	Bool     FieldType = "bool"
	Bytes    FieldType = "bytes"
	Datetime FieldType = "datetime"
	Decimal  FieldType = "decimal"
	Duration FieldType = "duration"
	Float    FieldType = "float"
	Geometry FieldType = "geometry"
	Int      FieldType = "int"
	Number   FieldType = "number"
	Object   FieldType = "object"
	Option   FieldType = "option"
	Record   FieldType = "record"
	Set      FieldType = "set"
	String   FieldType = "string"
	UUID     FieldType = "uuid"

	// Generic is replaced by the generic parameter of the table being rendered
	Generic FieldType = "$$generic"
)

var fieldTypes = map[FieldType]bool{
	Any: true, Array: true, Bool: true, Bytes: true, Datetime: true, Decimal: true,
	Duration: true, Float: true, Geometry: true, Int: true, Number: true, Object: true,
	Option: true, Record: true, Set: true, String: true, UUID: true, Generic: true,
}

// Valid reports whether t is one of the known type tags
func (t FieldType) Valid() bool {
	return fieldTypes[t]
}

// IsComposite reports whether t wraps another type
func (t FieldType) IsComposite() bool {
	switch t {
	case Object, Option, Set, Array, Record:
		return true
	}
	return false
}

// IsCollection reports whether nested paths of t address each element (`.*.`)
func (t FieldType) IsCollection() bool {
	return t == Set || t == Array
}

// TypeParam is the secondary type parameter of a composite field.
// It is either a TypeName or a Ref to another declaration.
type TypeParam interface {
	typeParam()
}

// TypeName is a textual type parameter such as "string" or "$$generic"
type TypeName string

func (TypeName) typeParam() {}

// Ref points a composite field at another declaration whose fields are
// expanded under the field's path
type Ref struct {
	Decl *Declaration
}

func (Ref) typeParam() {}

// RefTo returns a type parameter referencing d
func RefTo(d *Declaration) Ref {
	return Ref{Decl: d}
}

// FieldSpec is accepted by RegisterField: a bare FieldType or a FieldConfig
type FieldSpec interface {
	fieldConfig() FieldConfig
}

func (t FieldType) fieldConfig() FieldConfig {
	return FieldConfig{Type: t}
}

// FieldConfig describes one field of a declaration
type FieldConfig struct {
	Type  FieldType
	Typed TypeParam

	// Default, Value and Assert are inserted into the output verbatim
	Default string
	Value   string
	Assert  string

	Indexed  bool
	Unique   bool
	Primary  bool
	Optional bool

	// Properties is the snapshot of a referenced declaration's fields,
	// filled in by the registry
	Properties *Properties
}

func (c FieldConfig) fieldConfig() FieldConfig {
	return c
}

// HasIndex reports whether the field produces an implicit index
func (c FieldConfig) HasIndex() bool {
	return c.Primary || c.Indexed || c.Unique
}

// SchemaMode is the definition mode of a table
type SchemaMode string

const (
	Schemaless SchemaMode = "SCHEMALESS"
	Schemafull SchemaMode = "SCHEMAFULL"
)

// Table names one table produced by a declaration. Generic is substituted
// for the generic marker when the table is rendered.
type Table struct {
	Name    string
	Generic string
}

// Index is a table-level index
type Index struct {
	Name   string
	Fields []string
	Unique bool
}

// IndexName returns the explicit name or idx_<table>_<fields>
func (i Index) IndexName(table string) string {
	if i.Name != "" {
		return i.Name
	}
	return "idx_" + table + "_" + strings.Join(i.Fields, "_")
}

// TableSpec is accepted by RegisterTable: a TableName, a TableList or a TableConfig
type TableSpec interface {
	tableConfig() TableConfig
}

// TableName is a single table without generic parameter
type TableName string

func (n TableName) tableConfig() TableConfig {
	return TableConfig{Tables: []Table{{Name: string(n)}}}
}

// TableList declares several tables sharing one field set
type TableList []Table

func (l TableList) tableConfig() TableConfig {
	return TableConfig{Tables: l}
}

// TableConfig is the full table configuration
type TableConfig struct {
	Tables  []Table
	Mode    SchemaMode
	Indexes []Index
}

func (c TableConfig) tableConfig() TableConfig {
	return c
}

// Descriptor accumulates the schema of one declaration
type Descriptor struct {
	Tables     []Table
	Mode       SchemaMode
	Indexes    []Index
	Properties *Properties
}

func (d *Descriptor) clone() *Descriptor {
	out := &Descriptor{
		Tables:     append([]Table(nil), d.Tables...),
		Mode:       d.Mode,
		Properties: d.Properties.deepClone(),
	}
	for _, idx := range d.Indexes {
		idx.Fields = append([]string(nil), idx.Fields...)
		out.Indexes = append(out.Indexes, idx)
	}
	return out
}

// Declaration is a handle for a class-like schema declaration.
// Identity is the pointer; Parent links to the declaration it extends.
type Declaration struct {
	Name   string
	Parent *Declaration
}
