// Package sqlimport registers the tables of a relational catalog as schema
// declarations, one declaration per table.
package sqlimport

import (
	"fmt"
	"log"

	"github.com/tordrt/surqlschema/internal/db"
	"github.com/tordrt/surqlschema/internal/schema"
)

// Options configures the import
type Options struct {
	// Mode of every imported table, SCHEMAFULL when empty
	Mode schema.SchemaMode

	// ExcludeTables lists tables that are not imported
	ExcludeTables []string

	// Logger receives notes about columns that could not be mapped exactly.
	// Nil disables logging.
	Logger *log.Logger
}

// Import declares and registers every table of catalog in reg and returns
// the declarations in catalog order
func Import(reg *schema.Registry, catalog *db.Catalog, opts Options) ([]*schema.Declaration, error) {
	if opts.Mode == "" {
		opts.Mode = schema.Schemafull
	}

	excludeSet := make(map[string]bool)
	for _, name := range opts.ExcludeTables {
		excludeSet[name] = true
	}

	var decls []*schema.Declaration
	for _, table := range catalog.Tables {
		if excludeSet[table.Name] {
			continue
		}
		d, err := importTable(reg, table, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to import table %s: %w", table.Name, err)
		}
		decls = append(decls, d)
	}
	return decls, nil
}

func importTable(reg *schema.Registry, table db.Table, opts Options) (*schema.Declaration, error) {
	d := reg.Declare(table.Name, nil)
	b := reg.Define(d).Table(schema.TableConfig{
		Tables:  []schema.Table{{Name: table.Name}},
		Mode:    opts.Mode,
		Indexes: tableIndexes(table),
	})

	references := make(map[string]string)
	for _, rel := range table.Relations {
		references[rel.SourceColumn] = rel.TargetTable
	}
	singlePK := ""
	if len(table.PrimaryKey) == 1 {
		singlePK = table.PrimaryKey[0]
	}

	for _, col := range table.Columns {
		b.Field(col.Name, columnField(table.Name, col, col.Name == singlePK, references[col.Name], opts.Logger))
	}
	return d, b.Err()
}

func columnField(table string, col db.Column, primary bool, target string, logger *log.Logger) schema.FieldConfig {
	cfg := schema.FieldConfig{
		Primary:  primary,
		Unique:   col.IsUnique && !primary,
		Optional: col.Nullable && !primary,
	}

	switch {
	case target != "":
		cfg.Type = schema.Record
		cfg.Typed = schema.TypeName(target)
	case len(col.EnumValues) > 0:
		// Enum labels are strings whatever the engine calls the type
		cfg.Type = schema.String
	default:
		var ok bool
		cfg.Type, cfg.Typed, ok = MapType(col.Type)
		if !ok && logger != nil {
			logger.Printf("%s.%s: unmapped type %q, using any", table, col.Name, col.Type)
		}
	}

	if len(col.EnumValues) > 0 {
		cfg.Assert = enumAssertion(col.EnumValues, cfg.Optional)
	}

	if col.DefaultValue != nil && !primary {
		if def, ok := MapDefault(*col.DefaultValue, cfg.Type); ok {
			cfg.Default = def
		} else if logger != nil {
			logger.Printf("%s.%s: dropped default %s", table, col.Name, *col.DefaultValue)
		}
	}
	return cfg
}

// tableIndexes converts secondary indexes. Single-column unique indexes are
// already covered by the unique flag of their column.
func tableIndexes(table db.Table) []schema.Index {
	uniqueCols := make(map[string]bool)
	for _, col := range table.Columns {
		if col.IsUnique {
			uniqueCols[col.Name] = true
		}
	}

	var indexes []schema.Index
	if len(table.PrimaryKey) > 1 {
		indexes = append(indexes, schema.Index{Fields: table.PrimaryKey, Unique: true})
	}
	for _, idx := range table.Indexes {
		if idx.IsUnique && len(idx.Columns) == 1 && uniqueCols[idx.Columns[0]] {
			continue
		}
		indexes = append(indexes, schema.Index{
			Name:   idx.Name,
			Fields: idx.Columns,
			Unique: idx.IsUnique,
		})
	}
	return indexes
}
