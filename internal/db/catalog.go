package db

import (
	"context"
	"fmt"
	"strings"
)

// Catalog is the relational schema read from a source database
type Catalog struct {
	Tables []Table
}

// Table represents a database table
type Table struct {
	Name       string
	Columns    []Column
	Relations  []Relation
	Indexes    []Index
	PrimaryKey []string
}

// Column represents a table column
type Column struct {
	Name         string
	Type         string
	Nullable     bool
	DefaultValue *string
	IsUnique     bool
	EnumValues   []string
}

// Relation represents a foreign key relationship
type Relation struct {
	SourceColumn string
	TargetTable  string
	TargetColumn string
}

// Index represents a secondary index (primary key indexes are excluded)
type Index struct {
	Name     string
	Columns  []string
	IsUnique bool
}

// Extractor reads a Catalog from one database connection
type Extractor interface {
	// ExtractCatalog extracts the given tables, or every table when tables is empty
	ExtractCatalog(ctx context.Context, tables []string) (*Catalog, error)
	Close(ctx context.Context) error
}

// catalogSource is implemented per database engine; extractCatalog
// assembles the catalog from its queries
type catalogSource interface {
	tableNames(ctx context.Context) ([]string, error)
	columns(ctx context.Context, table string) ([]Column, error)
	primaryKey(ctx context.Context, table string) ([]string, error)
	relations(ctx context.Context, table string) ([]Relation, error)
	indexes(ctx context.Context, table string) ([]Index, error)
}

func extractCatalog(ctx context.Context, src catalogSource, requested []string) (*Catalog, error) {
	tableNames := requested
	if len(tableNames) == 0 {
		var err error
		tableNames, err = src.tableNames(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get table names: %w", err)
		}
	}

	catalog := &Catalog{}
	for _, name := range tableNames {
		table, err := extractTable(ctx, src, name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", name, err)
		}
		catalog.Tables = append(catalog.Tables, *table)
	}
	return catalog, nil
}

func extractTable(ctx context.Context, src catalogSource, name string) (*Table, error) {
	table := &Table{Name: name}

	var err error
	if table.Columns, err = src.columns(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if table.PrimaryKey, err = src.primaryKey(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	if table.Relations, err = src.relations(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to extract relations: %w", err)
	}
	if table.Indexes, err = src.indexes(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	return table, nil
}

// Open connects to the database named by url and returns its extractor.
// schemaName applies to PostgreSQL (default "public") and MySQL (default:
// the database named in the DSN).
func Open(ctx context.Context, url, schemaName string) (Extractor, error) {
	dbType, connStr, err := ParseDatabaseURL(url)
	if err != nil {
		return nil, err
	}

	switch dbType {
	case "postgres":
		client, err := NewPostgresClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if schemaName == "" {
			schemaName = "public"
		}
		return NewPostgresExtractor(client, schemaName), nil
	case "mysql":
		if schemaName == "" {
			schemaName, err = ParseDatabaseName(connStr)
			if err != nil {
				return nil, fmt.Errorf("failed to determine database name: %w (please specify a schema name)", err)
			}
		}
		client, err := NewMySQLClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		return NewMySQLExtractor(client, schemaName), nil
	case "sqlite":
		client, err := NewSQLiteClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
		return NewSQLiteExtractor(client), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// ParseDatabaseURL detects database type and returns connection string
func ParseDatabaseURL(url string) (dbType, connectionStr string, err error) {
	if url == "" {
		return "", "", fmt.Errorf("database URL is required")
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres", url, nil
	}

	if strings.HasPrefix(url, "mysql://") {
		// Strip mysql:// prefix for the Go MySQL driver
		return "mysql", strings.TrimPrefix(url, "mysql://"), nil
	}

	if strings.HasPrefix(url, "sqlite://") {
		// Strip sqlite:// prefix to get file path
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), nil
	}

	return "", "", fmt.Errorf("invalid database URL scheme (must start with postgres://, mysql://, or sqlite://)")
}
