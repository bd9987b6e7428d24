package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/surqlschema"
	"github.com/tordrt/surqlschema/internal/config"
)

var (
	opts = loadOptions()

	schemaFile   string
	dbURL        string
	mysqlURL     string
	sqlitePath   string
	outputFile   string
	tables       string
	exclude      string
	declarations string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "surqlschema",
	Short: "Generate SurrealQL schema definitions",
	Long: `surqlschema renders DEFINE TABLE / DEFINE FIELD / DEFINE INDEX statements from a YAML or JSON
schema file, or from the catalog of an existing PostgreSQL, MySQL or SQLite database.`,
	RunE: run,
}

func loadOptions() *config.Options {
	o := config.DefaultOptions()
	config.LoadOptionsFromEnv(o)
	return o
}

func init() {
	rootCmd.Flags().StringVarP(&schemaFile, "config", "c", "", "Schema file (.yaml, .yml or .json)")
	rootCmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection string")
	rootCmd.Flags().StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "d", opts.OutputDir, "Output directory for one file per table")
	rootCmd.Flags().StringVarP(&opts.Format, "format", "f", opts.Format, "Output format: surql or markdown")
	rootCmd.Flags().BoolVar(&opts.Comments, "comments", opts.Comments, "Add a comment banner before every table")
	rootCmd.Flags().StringVarP(&tables, "tables", "t", "", "Tables to import (comma-separated, optional)")
	rootCmd.Flags().StringVar(&exclude, "exclude", "", "Tables to skip when importing (comma-separated)")
	rootCmd.Flags().StringVarP(&opts.SchemaName, "schema", "s", opts.SchemaName, "Database schema name (default: public for PostgreSQL)")
	rootCmd.Flags().StringVar(&opts.Mode, "mode", opts.Mode, "Mode of imported tables: SCHEMAFULL or SCHEMALESS")
	rootCmd.Flags().StringVar(&declarations, "declarations", "", "Declarations to render from the schema file (comma-separated, default: all)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log import diagnostics to stderr")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := validateSources(); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if opts.OutputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	var logger *log.Logger
	if verbose {
		logger = log.New(os.Stderr, "surqlschema: ", 0)
	}

	var (
		reg   *surqlschema.Registry
		decls []*surqlschema.Declaration
		err   error
	)
	if schemaFile != "" {
		reg, decls, err = surqlschema.LoadSchemaFile(schemaFile)
		if err != nil {
			return err
		}
		decls, err = selectDeclarations(decls, parseTableList(declarations))
		if err != nil {
			return err
		}
	} else {
		reg, decls, err = surqlschema.ImportDatabase(ctx, databaseURL(), &surqlschema.Options{
			Tables:        parseTableList(tables),
			ExcludeTables: parseTableList(exclude),
			SchemaName:    opts.SchemaName,
			Mode:          surqlschema.SchemaMode(strings.ToUpper(opts.Mode)),
			Logger:        logger,
		})
		if err != nil {
			return err
		}
	}
	for _, w := range surqlschema.GenericWarnings(reg, decls) {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if logger != nil {
		logger.Printf("rendering %d declarations", len(decls))
	}

	outOpts := &surqlschema.OutputOptions{
		OutputDir: opts.OutputDir,
		Format:    opts.Format,
		Comments:  opts.Comments,
	}

	// Single-file output
	if opts.OutputDir == "" && outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		outOpts.Writer = f
	}

	if err := surqlschema.WriteSchema(reg, decls, outOpts); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func validateSources() error {
	count := 0
	for _, s := range []string{schemaFile, dbURL, mysqlURL, sqlitePath} {
		if s != "" {
			count++
		}
	}
	if count == 0 {
		return fmt.Errorf("one of --config, --db-url, --mysql-url, or --sqlite must be specified")
	}
	if count > 1 {
		return fmt.Errorf("only one of --config, --db-url, --mysql-url, or --sqlite can be specified")
	}
	return nil
}

func databaseURL() string {
	switch {
	case sqlitePath != "":
		return "sqlite://" + sqlitePath
	case mysqlURL != "":
		if strings.HasPrefix(mysqlURL, "mysql://") {
			return mysqlURL
		}
		return "mysql://" + mysqlURL
	default:
		return dbURL
	}
}

// parseTableList splits a comma-separated flag value
func parseTableList(s string) []string {
	if s == "" {
		return nil
	}
	list := strings.Split(s, ",")
	for i, t := range list {
		list[i] = strings.TrimSpace(t)
	}
	return list
}

// selectDeclarations keeps the named declarations, in the given order.
// An empty name list keeps all of them.
func selectDeclarations(decls []*surqlschema.Declaration, names []string) ([]*surqlschema.Declaration, error) {
	if len(names) == 0 {
		return decls, nil
	}

	byName := make(map[string]*surqlschema.Declaration, len(decls))
	for _, d := range decls {
		byName[d.Name] = d
	}

	selected := make([]*surqlschema.Declaration, 0, len(names))
	for _, name := range names {
		d, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("declaration %s: %w", name, surqlschema.ErrUnknownDeclaration)
		}
		selected = append(selected, d)
	}
	return selected, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
