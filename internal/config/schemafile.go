// Package config loads schema declaration files and tool options.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/surqlschema/internal/schema"
)

// SchemaFile is a list of declarations registered in file order
type SchemaFile struct {
	Declarations []DeclarationSpec `json:"declarations" yaml:"declarations"`
}

// DeclarationSpec describes one declaration.
// A declaration without Table/Tables only provides fields for others to
// reference or extend.
type DeclarationSpec struct {
	Name string `json:"name" yaml:"name"`

	// Extends names an earlier declaration whose fields are inherited
	Extends string `json:"extends,omitempty" yaml:"extends,omitempty"`

	// Table is a shorthand for a single table without generic parameter
	Table  string      `json:"table,omitempty" yaml:"table,omitempty"`
	Tables []TableSpec `json:"tables,omitempty" yaml:"tables,omitempty"`

	// Mode is SCHEMAFULL or SCHEMALESS (default)
	Mode    string      `json:"mode,omitempty" yaml:"mode,omitempty"`
	Indexes []IndexSpec `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	Fields  []FieldSpec `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// TableSpec is one table of a declaration
type TableSpec struct {
	Name    string `json:"name" yaml:"name"`
	Generic string `json:"generic,omitempty" yaml:"generic,omitempty"`
}

// IndexSpec is a table-level index
type IndexSpec struct {
	Name   string   `json:"name,omitempty" yaml:"name,omitempty"`
	Fields []string `json:"fields" yaml:"fields"`
	Unique bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// FieldSpec is one field. Typed and Ref are mutually exclusive: Typed is a
// textual type parameter, Ref names an earlier declaration.
type FieldSpec struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Typed    string `json:"typed,omitempty" yaml:"typed,omitempty"`
	Ref      string `json:"ref,omitempty" yaml:"ref,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
	Assert   string `json:"assert,omitempty" yaml:"assert,omitempty"`
	Indexed  bool   `json:"indexed,omitempty" yaml:"indexed,omitempty"`
	Unique   bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
	Primary  bool   `json:"primary,omitempty" yaml:"primary,omitempty"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// LoadSchemaFile loads declarations from a YAML or JSON file
func LoadSchemaFile(path string) (*SchemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return ParseSchemaFile(data, "yaml")
	case ".json":
		return ParseSchemaFile(data, "json")
	default:
		return nil, fmt.Errorf("unsupported schema file format: %s", ext)
	}
}

// ParseSchemaFile parses declarations in the given format ("yaml" or "json")
func ParseSchemaFile(data []byte, format string) (*SchemaFile, error) {
	f := &SchemaFile{}
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("failed to parse YAML schema file: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("failed to parse JSON schema file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported schema file format: %s", format)
	}
	return f, nil
}

// Register declares every declaration of the file in reg and attaches its
// metadata. Declarations are returned in file order.
func (f *SchemaFile) Register(reg *schema.Registry) ([]*schema.Declaration, error) {
	byName := make(map[string]*schema.Declaration)
	decls := make([]*schema.Declaration, 0, len(f.Declarations))

	for _, spec := range f.Declarations {
		if spec.Name == "" {
			return nil, fmt.Errorf("declaration without name: %w", schema.ErrInvalidTarget)
		}
		if _, dup := byName[spec.Name]; dup {
			return nil, fmt.Errorf("declaration %s is defined more than once", spec.Name)
		}

		var parent *schema.Declaration
		if spec.Extends != "" {
			var ok bool
			if parent, ok = byName[spec.Extends]; !ok {
				return nil, fmt.Errorf("declaration %s extends %s: %w", spec.Name, spec.Extends, schema.ErrUnknownDeclaration)
			}
		}

		d := reg.Declare(spec.Name, parent)
		if err := spec.register(reg, d, byName); err != nil {
			return nil, fmt.Errorf("declaration %s: %w", spec.Name, err)
		}
		byName[spec.Name] = d
		decls = append(decls, d)
	}
	return decls, nil
}

func (spec DeclarationSpec) register(reg *schema.Registry, d *schema.Declaration, byName map[string]*schema.Declaration) error {
	b := reg.Define(d)

	tableCfg, hasTables, err := spec.tableConfig()
	if err != nil {
		return err
	}
	if hasTables {
		b.Table(tableCfg)
	}

	for _, fs := range spec.Fields {
		cfg, err := fs.fieldConfig(byName)
		if err != nil {
			return fmt.Errorf("field %s: %w", fs.Name, err)
		}
		b.Field(fs.Name, cfg)
	}
	return b.Err()
}

func (spec DeclarationSpec) tableConfig() (schema.TableConfig, bool, error) {
	cfg := schema.TableConfig{}

	if spec.Table != "" {
		cfg.Tables = append(cfg.Tables, schema.Table{Name: spec.Table})
	}
	for _, t := range spec.Tables {
		if t.Name == "" {
			return cfg, false, fmt.Errorf("table without name")
		}
		cfg.Tables = append(cfg.Tables, schema.Table{Name: t.Name, Generic: t.Generic})
	}

	switch mode := schema.SchemaMode(strings.ToUpper(spec.Mode)); mode {
	case "", schema.Schemaless, schema.Schemafull:
		cfg.Mode = mode
	default:
		return cfg, false, fmt.Errorf("invalid mode: %s (must be SCHEMAFULL or SCHEMALESS)", spec.Mode)
	}

	for _, idx := range spec.Indexes {
		if len(idx.Fields) == 0 {
			return cfg, false, fmt.Errorf("index %q has no fields", idx.Name)
		}
		cfg.Indexes = append(cfg.Indexes, schema.Index{Name: idx.Name, Fields: idx.Fields, Unique: idx.Unique})
	}

	hasTables := len(cfg.Tables) > 0
	if !hasTables && (spec.Mode != "" || len(spec.Indexes) > 0) {
		return cfg, false, fmt.Errorf("mode and indexes require a table")
	}
	return cfg, hasTables, nil
}

func (fs FieldSpec) fieldConfig(byName map[string]*schema.Declaration) (schema.FieldConfig, error) {
	cfg := schema.FieldConfig{
		Type:     schema.FieldType(fs.Type),
		Default:  fs.Default,
		Value:    fs.Value,
		Assert:   fs.Assert,
		Indexed:  fs.Indexed,
		Unique:   fs.Unique,
		Primary:  fs.Primary,
		Optional: fs.Optional,
	}
	if cfg.Type != "" && !cfg.Type.Valid() {
		return cfg, fmt.Errorf("%q: %w", fs.Type, schema.ErrUnknownFieldType)
	}

	switch {
	case fs.Typed != "" && fs.Ref != "":
		return cfg, fmt.Errorf("typed and ref are mutually exclusive")
	case fs.Typed != "":
		cfg.Typed = schema.TypeName(fs.Typed)
	case fs.Ref != "":
		ref, ok := byName[fs.Ref]
		if !ok {
			return cfg, fmt.Errorf("ref %s: %w", fs.Ref, schema.ErrUnknownDeclaration)
		}
		cfg.Typed = schema.RefTo(ref)
	}
	return cfg, nil
}
