package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}

// SQLiteExtractor reads the catalog of a SQLite database
type SQLiteExtractor struct {
	client *SQLiteClient
}

// NewSQLiteExtractor creates a new SQLite catalog extractor
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{client: client}
}

// ExtractCatalog implements Extractor
func (e *SQLiteExtractor) ExtractCatalog(ctx context.Context, tables []string) (*Catalog, error) {
	return extractCatalog(ctx, e, tables)
}

// Close closes the database connection
func (e *SQLiteExtractor) Close(context.Context) error {
	return e.client.db.Close()
}

func (e *SQLiteExtractor) tableNames(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, e.client.db, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
}

func (e *SQLiteExtractor) columns(ctx context.Context, tableName string) ([]Column, error) {
	rows, err := e.client.db.QueryContext(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var notNull, pk int
		var defaultValue sql.NullString
		if err := rows.Scan(&col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		// Primary key columns are implicitly NOT NULL
		col.Nullable = notNull == 0 && pk == 0
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// A single-column unique index marks its column unique
	indexes, err := e.indexList(ctx, tableName)
	if err != nil {
		return nil, err
	}
	for _, idx := range indexes {
		if !idx.IsUnique || len(idx.Columns) != 1 || idx.origin == "pk" {
			continue
		}
		for i := range columns {
			if columns[i].Name == idx.Columns[0] {
				columns[i].IsUnique = true
			}
		}
	}
	return columns, nil
}

func (e *SQLiteExtractor) primaryKey(ctx context.Context, tableName string) ([]string, error) {
	return queryStrings(ctx, e.client.db,
		`SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`, tableName)
}

func (e *SQLiteExtractor) relations(ctx context.Context, tableName string) ([]Relation, error) {
	rows, err := e.client.db.QueryContext(ctx,
		`SELECT "from", "table", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []Relation
	for rows.Next() {
		var rel Relation
		var to sql.NullString
		if err := rows.Scan(&rel.SourceColumn, &rel.TargetTable, &to); err != nil {
			return nil, err
		}
		// A NULL target column refers to the primary key of the target table
		rel.TargetColumn = to.String
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}

type sqliteIndex struct {
	Index
	origin string
}

func (e *SQLiteExtractor) indexes(ctx context.Context, tableName string) ([]Index, error) {
	list, err := e.indexList(ctx, tableName)
	if err != nil {
		return nil, err
	}

	var indexes []Index
	for _, idx := range list {
		if idx.origin == "pk" {
			continue
		}
		// UNIQUE constraints get generated names. A single-column one is
		// carried by the column's unique flag; composite ones are kept unnamed.
		if strings.HasPrefix(idx.Name, "sqlite_autoindex") {
			if len(idx.Columns) < 2 {
				continue
			}
			idx.Name = ""
		}
		indexes = append(indexes, idx.Index)
	}
	return indexes, nil
}

func (e *SQLiteExtractor) indexList(ctx context.Context, tableName string) ([]sqliteIndex, error) {
	rows, err := e.client.db.QueryContext(ctx,
		`SELECT name, "unique", origin FROM pragma_index_list(?) ORDER BY name`, tableName)
	if err != nil {
		return nil, err
	}

	var list []sqliteIndex
	for rows.Next() {
		var idx sqliteIndex
		var unique int
		if err := rows.Scan(&idx.Name, &unique, &idx.origin); err != nil {
			rows.Close()
			return nil, err
		}
		idx.IsUnique = unique == 1
		list = append(list, idx)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range list {
		// Expression columns have no name and are skipped
		list[i].Columns, err = queryStrings(ctx, e.client.db,
			`SELECT name FROM pragma_index_info(?) WHERE name IS NOT NULL ORDER BY seqno`, list[i].Name)
		if err != nil {
			return nil, err
		}
	}
	return list, nil
}
