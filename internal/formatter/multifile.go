package formatter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/tordrt/surqlschema/internal/schema"
)

const (
	FormatMarkdown = "markdown"
	FormatSurql    = "surql"

	overviewName = "_overview"
)

// MultiFileFormatter writes every table to its own file in a directory,
// plus an overview listing the files
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "surql" or "markdown"
	Comments     bool
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string, comments bool) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
		Comments:     comments,
	}
}

// TableFile describes one written table file
type TableFile struct {
	Table       string
	File        string
	Fingerprint string
}

// Format writes the tables of decls to multiple files
func (f *MultiFileFormatter) Format(reg *schema.Registry, decls []*schema.Declaration) ([]TableFile, error) {
	descs, err := resolveAll(reg, decls)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, desc := range descs {
		for _, table := range desc.Tables {
			if err := checkFileName(table.Name); err != nil {
				return nil, err
			}
			if seen[table.Name] {
				return nil, fmt.Errorf("table %s is declared more than once", table.Name)
			}
			seen[table.Name] = true
		}
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var files []TableFile
	for _, desc := range descs {
		for _, table := range desc.Tables {
			tf, err := f.writeTableFile(desc, table)
			if err != nil {
				return nil, fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
			}
			files = append(files, tf)
		}
	}

	if err := f.writeOverview(files); err != nil {
		return nil, fmt.Errorf("failed to write overview: %w", err)
	}

	return files, nil
}

// checkFileName rejects table names that would leave the output directory
// or overwrite the overview file
func checkFileName(table string) error {
	switch {
	case table == "", table == ".", table == "..", table == overviewName:
	case strings.ContainsAny(table, "/\\\x00"), strings.ContainsRune(table, filepath.Separator):
	default:
		return nil
	}
	return fmt.Errorf("table name %q cannot be used as a file name", table)
}

// writeTableFile writes a single table to its own file
func (f *MultiFileFormatter) writeTableFile(desc *schema.Descriptor, table schema.Table) (TableFile, error) {
	var buf bytes.Buffer
	if f.OutputFormat == FormatMarkdown {
		NewMarkdownFormatter(&buf).FormatTable(desc, table)
	} else {
		NewSurqlFormatter(&buf, f.Comments).FormatTable(desc, table)
	}

	name := table.Name + f.getFileExtension()
	if err := os.WriteFile(filepath.Join(f.OutputDir, name), buf.Bytes(), 0644); err != nil {
		return TableFile{}, err
	}

	return TableFile{
		Table:       table.Name,
		File:        name,
		Fingerprint: Fingerprint(buf.Bytes()),
	}, nil
}

// writeOverview writes the overview file
func (f *MultiFileFormatter) writeOverview(files []TableFile) error {
	filename := filepath.Join(f.OutputDir, overviewName+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	// Sort tables alphabetically
	sorted := make([]TableFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Table < sorted[j].Table
	})

	if f.OutputFormat == FormatMarkdown {
		writeMarkdownOverview(file, sorted)
	} else {
		writeSurqlOverview(file, sorted)
	}
	return nil
}

func writeMarkdownOverview(w io.Writer, files []TableFile) {
	_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
	_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>.md`\n\n")
	_, _ = fmt.Fprintf(w, "## Tables\n\n")
	for _, tf := range files {
		_, _ = fmt.Fprintf(w, "- **%s** (`%s`, xxh3 %s)\n", tf.Table, tf.File, tf.Fingerprint)
	}
}

func writeSurqlOverview(w io.Writer, files []TableFile) {
	_, _ = fmt.Fprintf(w, "-- SCHEMA OVERVIEW\n")
	_, _ = fmt.Fprintf(w, "-- Each table has a file: <table_name>.surql\n")
	for _, tf := range files {
		_, _ = fmt.Fprintf(w, "-- %s %s xxh3:%s\n", tf.Table, tf.File, tf.Fingerprint)
	}
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".surql"
}

// Fingerprint returns the xxh3 hash of b as 16 hex digits
func Fingerprint(b []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(b))
}
