package formatter

import (
	"fmt"
	"strings"

	"github.com/tordrt/surqlschema/internal/schema"
)

// FieldDef is one field statement of a table, nested fields included
type FieldDef struct {
	Path   string
	Type   string
	Config schema.FieldConfig
}

// IndexName returns the name of the implicit index of the field
func (d FieldDef) IndexName(table string) string {
	r := strings.NewReplacer(".", "_", "*", "_")
	return "idx_" + table + "_" + r.Replace(d.Path)
}

// FieldDefs flattens the fields of desc for one table in output order:
// every field is followed by its nested fields, depth first
func FieldDefs(desc *schema.Descriptor, table schema.Table) []FieldDef {
	var defs []FieldDef
	appendFieldDefs(&defs, desc.Properties, table, "")
	return defs
}

func appendFieldDefs(defs *[]FieldDef, props *schema.Properties, table schema.Table, prefix string) {
	props.Each(func(name string, cfg schema.FieldConfig) {
		path := prefix + name
		*defs = append(*defs, FieldDef{
			Path:   path,
			Type:   TypeString(cfg, table),
			Config: cfg,
		})

		if cfg.Properties.Len() == 0 {
			return
		}
		sep := "."
		if cfg.Type.IsCollection() {
			sep = ".*."
		}
		appendFieldDefs(defs, cfg.Properties, table, path+sep)
	})
}

// TypeString computes the TYPE clause of a field rendered on table
func TypeString(cfg schema.FieldConfig, table schema.Table) string {
	var typ string
	switch {
	case cfg.Primary:
		typ = fmt.Sprintf("record<%s>", table.Name)
	case cfg.Type.IsComposite():
		typ = compositeType(cfg, table.Generic)
	default:
		t := cfg.Type
		if t == "" {
			t = schema.Any
		}
		typ = substituteGeneric(string(t), table.Generic)
	}

	if cfg.Optional {
		typ = fmt.Sprintf("option<%s>", typ)
	}
	return typ
}

func compositeType(cfg schema.FieldConfig, generic string) string {
	switch typed := cfg.Typed.(type) {
	case nil:
		return string(cfg.Type)
	case schema.TypeName:
		if typed == "" {
			return string(cfg.Type)
		}
		if cfg.Type == schema.Object {
			return string(schema.Object)
		}
		return fmt.Sprintf("%s<%s>", cfg.Type, substituteGeneric(string(typed), generic))
	default:
		if cfg.Type == schema.Object {
			return string(schema.Object)
		}
		return fmt.Sprintf("%s<%s>", cfg.Type, schema.Object)
	}
}

// substituteGeneric replaces the generic marker, falling back to any when
// the table has no generic parameter
func substituteGeneric(s, generic string) string {
	if generic == "" {
		generic = string(schema.Any)
	}
	return strings.ReplaceAll(s, string(schema.Generic), generic)
}

// MissingGenerics returns the paths of fields of desc that use the generic
// marker while table has no generic parameter. Those fields render as any.
func MissingGenerics(desc *schema.Descriptor, table schema.Table) []string {
	if table.Generic != "" {
		return nil
	}
	var paths []string
	for _, def := range FieldDefs(desc, table) {
		if usesGeneric(def.Config) {
			paths = append(paths, def.Path)
		}
	}
	return paths
}

func usesGeneric(cfg schema.FieldConfig) bool {
	switch {
	case cfg.Primary:
		return false
	case cfg.Type == schema.Generic:
		return true
	case cfg.Type.IsComposite() && cfg.Type != schema.Object:
		name, ok := cfg.Typed.(schema.TypeName)
		return ok && strings.Contains(string(name), string(schema.Generic))
	}
	return false
}
