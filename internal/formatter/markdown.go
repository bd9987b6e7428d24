package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/surqlschema/internal/schema"
)

// MarkdownFormatter documents registered tables as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes every table of decls in markdown format
func (f *MarkdownFormatter) Format(reg *schema.Registry, decls []*schema.Declaration) error {
	descs, err := resolveAll(reg, decls)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(f.writer, "# Schema")
	_, _ = fmt.Fprintln(f.writer)

	for _, desc := range descs {
		for _, table := range desc.Tables {
			f.FormatTable(desc, table)
		}
	}
	return nil
}

// FormatTable writes a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(desc *schema.Descriptor, table schema.Table) {
	mode := desc.Mode
	if mode == "" {
		mode = schema.Schemaless
	}
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)
	_, _ = fmt.Fprintf(f.writer, "Mode: %s\n\n", mode)

	defs := FieldDefs(desc, table)
	if len(defs) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Fields")
		_, _ = fmt.Fprintln(f.writer)
		for _, def := range defs {
			constraintStr := f.formatConstraints(def.Config)
			if constraintStr != "" {
				_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", def.Path, def.Type, constraintStr)
			} else {
				_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", def.Path, def.Type)
			}
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	f.formatIndexes(defs, desc.Indexes, table.Name)
}

func (f *MarkdownFormatter) formatIndexes(defs []FieldDef, indexes []schema.Index, table string) {
	var lines []string
	for _, def := range defs {
		if !def.Config.HasIndex() {
			continue
		}
		line := fmt.Sprintf("- %s on (%s)", def.IndexName(table), def.Path)
		if def.Config.Primary || def.Config.Unique {
			line += ", unique"
		}
		lines = append(lines, line)
	}
	for _, idx := range indexes {
		line := fmt.Sprintf("- %s on (%s)", idx.IndexName(table), strings.Join(idx.Fields, ", "))
		if idx.Unique {
			line += ", unique"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return
	}

	_, _ = fmt.Fprintln(f.writer, "### Indexes")
	_, _ = fmt.Fprintln(f.writer)
	for _, line := range lines {
		_, _ = fmt.Fprintln(f.writer, line)
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatConstraints(cfg schema.FieldConfig) string {
	var constraints []string

	if cfg.Primary {
		constraints = append(constraints, "PK")
	}
	if cfg.Unique {
		constraints = append(constraints, "UNIQUE")
	}
	if cfg.Default != "" {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", cfg.Default))
	}
	if cfg.Value != "" {
		constraints = append(constraints, fmt.Sprintf("VALUE %s", cfg.Value))
	}
	if cfg.Assert != "" {
		constraints = append(constraints, fmt.Sprintf("ASSERT %s", cfg.Assert))
	}

	return strings.Join(constraints, ", ")
}
