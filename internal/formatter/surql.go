package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/surqlschema/internal/schema"
)

// SurqlFormatter writes DEFINE TABLE / FIELD / INDEX statements
type SurqlFormatter struct {
	writer   io.Writer
	comments bool
}

// NewSurqlFormatter creates a new statement formatter. With comments set,
// every table block starts with a banner naming the table.
func NewSurqlFormatter(w io.Writer, comments bool) *SurqlFormatter {
	return &SurqlFormatter{writer: w, comments: comments}
}

// Render returns the statements for decls as a string
func Render(reg *schema.Registry, decls []*schema.Declaration, comments bool) (string, error) {
	var sb strings.Builder
	if err := NewSurqlFormatter(&sb, comments).Format(reg, decls); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Format writes one block per table of every declaration, in order
func (f *SurqlFormatter) Format(reg *schema.Registry, decls []*schema.Declaration) error {
	descs, err := resolveAll(reg, decls)
	if err != nil {
		return err
	}

	for _, desc := range descs {
		for _, table := range desc.Tables {
			f.FormatTable(desc, table)
		}
	}
	return nil
}

// FormatTable writes the block of a single table of desc
func (f *SurqlFormatter) FormatTable(desc *schema.Descriptor, table schema.Table) {
	if f.comments {
		_, _ = fmt.Fprintln(f.writer, "-- ------------------------------")
		_, _ = fmt.Fprintf(f.writer, "-- TABLE: %s\n", table.Name)
		_, _ = fmt.Fprintln(f.writer, "-- ------------------------------")
	}

	mode := desc.Mode
	if mode == "" {
		mode = schema.Schemaless
	}
	_, _ = fmt.Fprintf(f.writer, "DEFINE TABLE %s %s;\n", table.Name, mode)

	for _, def := range FieldDefs(desc, table) {
		_, _ = fmt.Fprintln(f.writer, f.fieldStatement(def, table.Name))
		if def.Config.HasIndex() {
			_, _ = fmt.Fprintln(f.writer, f.implicitIndexStatement(def, table.Name))
		}
	}

	for _, idx := range desc.Indexes {
		_, _ = fmt.Fprintln(f.writer, f.indexStatement(idx, table.Name))
	}

	_, _ = fmt.Fprintln(f.writer) // Blank line between tables
}

func (f *SurqlFormatter) fieldStatement(def FieldDef, table string) string {
	parts := []string{"DEFINE FIELD", def.Path, "ON", table, "TYPE", def.Type}

	cfg := def.Config
	if cfg.Default != "" {
		parts = append(parts, "DEFAULT", cfg.Default)
	}
	if cfg.Value != "" {
		parts = append(parts, "VALUE", cfg.Value)
	}
	if cfg.Assert != "" {
		parts = append(parts, "ASSERT", cfg.Assert)
	}

	return strings.Join(parts, " ") + ";"
}

func (f *SurqlFormatter) implicitIndexStatement(def FieldDef, table string) string {
	unique := ""
	if def.Config.Primary || def.Config.Unique {
		unique = " UNIQUE"
	}
	return fmt.Sprintf("DEFINE INDEX %s ON %s FIELDS %s%s;", def.IndexName(table), table, def.Path, unique)
}

func (f *SurqlFormatter) indexStatement(idx schema.Index, table string) string {
	unique := ""
	if idx.Unique {
		unique = " UNIQUE"
	}
	return fmt.Sprintf("DEFINE INDEX %s ON %s FIELDS %s%s;", idx.IndexName(table), table, strings.Join(idx.Fields, ", "), unique)
}

func resolveAll(reg *schema.Registry, decls []*schema.Declaration) ([]*schema.Descriptor, error) {
	descs := make([]*schema.Descriptor, 0, len(decls))
	for _, d := range decls {
		if d == nil {
			return nil, fmt.Errorf("render: nil declaration: %w", schema.ErrNotRegistered)
		}
		desc, ok := reg.Snapshot(d)
		if !ok {
			return nil, fmt.Errorf("render %s: %w", d.Name, schema.ErrNotRegistered)
		}
		descs = append(descs, desc)
	}
	return descs, nil
}
