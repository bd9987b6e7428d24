package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db}, nil
}

// ParseDatabaseName returns the database named in a MySQL DSN
func ParseDatabaseName(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("no database name in connection string")
	}
	return cfg.DBName, nil
}

// MySQLExtractor reads the catalog of one MySQL database
type MySQLExtractor struct {
	client     *MySQLClient
	schemaName string
}

// NewMySQLExtractor creates a new MySQL catalog extractor
func NewMySQLExtractor(client *MySQLClient, schemaName string) *MySQLExtractor {
	return &MySQLExtractor{client: client, schemaName: schemaName}
}

// ExtractCatalog implements Extractor
func (e *MySQLExtractor) ExtractCatalog(ctx context.Context, tables []string) (*Catalog, error) {
	return extractCatalog(ctx, e, tables)
}

// Close closes the database connection
func (e *MySQLExtractor) Close(context.Context) error {
	return e.client.db.Close()
}

func (e *MySQLExtractor) tableNames(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, e.client.db, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, e.schemaName)
}

func (e *MySQLExtractor) columns(ctx context.Context, tableName string) ([]Column, error) {
	// is_unique only counts UNIQUE constraints over this one column; composite
	// constraints are reported as indexes.
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.data_type,
			c.is_nullable,
			c.column_default,
			c.extra,
			EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
					AND tc.table_name = kcu.table_name
				WHERE tc.table_schema = c.table_schema
					AND tc.table_name = c.table_name
					AND tc.constraint_type = 'UNIQUE'
					AND kcu.column_name = c.column_name
					AND (
						SELECT COUNT(*) FROM information_schema.key_column_usage k
						WHERE k.table_schema = tc.table_schema
							AND k.table_name = tc.table_name
							AND k.constraint_name = tc.constraint_name
					) = 1
			) AS is_unique
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.db.QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var columnType, dataType, nullable, extra string
		var defaultVal sql.NullString
		if err := rows.Scan(&col.Name, &columnType, &dataType, &nullable, &defaultVal, &extra, &col.IsUnique); err != nil {
			return nil, err
		}

		col.Type = columnType
		col.Nullable = nullable == "YES"
		if defaultVal.Valid {
			def := mysqlDefault(defaultVal.String, dataType, extra)
			col.DefaultValue = &def
		}
		if dataType == "enum" {
			if col.EnumValues, err = parseEnumValues(columnType); err != nil {
				return nil, err
			}
			col.Type = "enum"
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// mysqlDefault quotes the literal default of a string column, which MySQL
// reports without quotes. Expression defaults are flagged DEFAULT_GENERATED
// and returned unchanged.
func mysqlDefault(value, dataType, extra string) string {
	if strings.Contains(strings.ToUpper(extra), "DEFAULT_GENERATED") {
		return value
	}
	switch strings.ToLower(dataType) {
	case "char", "varchar", "tinytext", "text", "mediumtext", "longtext", "enum", "set":
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	}
	return value
}

// parseEnumValues extracts the labels of an enum('a','b') column type.
// Labels are SQL string literals and may contain commas or doubled quotes.
func parseEnumValues(columnType string) ([]string, error) {
	start := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("invalid enum type format: %s", columnType)
	}

	var values []string
	rest := strings.TrimSpace(columnType[start+1 : end])
	for {
		label, n, ok := scanLiteral(rest)
		if !ok {
			return nil, fmt.Errorf("invalid enum type format: %s", columnType)
		}
		values = append(values, label)

		rest = strings.TrimSpace(rest[n:])
		if rest == "" {
			return values, nil
		}
		if rest[0] != ',' {
			return nil, fmt.Errorf("invalid enum type format: %s", columnType)
		}
		rest = strings.TrimSpace(rest[1:])
	}
}

// scanLiteral reads one quoted literal at the start of s and returns its
// value and the number of bytes consumed
func scanLiteral(s string) (string, int, bool) {
	if s == "" || s[0] != '\'' {
		return "", 0, false
	}
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		if s[i] != '\'' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		return b.String(), i + 1, true
	}
	return "", 0, false
}

func (e *MySQLExtractor) primaryKey(ctx context.Context, tableName string) ([]string, error) {
	return queryStrings(ctx, e.client.db, `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`, e.schemaName, tableName)
}

func (e *MySQLExtractor) relations(ctx context.Context, tableName string) ([]Relation, error) {
	rows, err := e.client.db.QueryContext(ctx, `
		SELECT column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND referenced_table_name IS NOT NULL
		ORDER BY ordinal_position
	`, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []Relation
	for rows.Next() {
		var rel Relation
		if err := rows.Scan(&rel.SourceColumn, &rel.TargetTable, &rel.TargetColumn); err != nil {
			return nil, err
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}

func (e *MySQLExtractor) indexes(ctx context.Context, tableName string) ([]Index, error) {
	rows, err := e.client.db.QueryContext(ctx, `
		SELECT
			index_name,
			non_unique = 0,
			GROUP_CONCAT(column_name ORDER BY seq_in_index)
		FROM information_schema.statistics
		WHERE table_schema = ?
			AND table_name = ?
			AND index_name != 'PRIMARY'
		GROUP BY index_name, non_unique
		ORDER BY index_name
	`, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []Index
	for rows.Next() {
		var idx Index
		var columnNames string
		if err := rows.Scan(&idx.Name, &idx.IsUnique, &columnNames); err != nil {
			return nil, err
		}
		idx.Columns = strings.Split(columnNames, ",")
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}

func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
