//go:build integration
// +build integration

package integration

import (
	"testing"

	"github.com/tordrt/surqlschema/internal/db"
)

// verifyTablesExist checks that all expected tables are present in the catalog
func verifyTablesExist(t *testing.T, c *db.Catalog, expectedTables []string) {
	t.Helper()

	if len(c.Tables) != len(expectedTables) {
		t.Errorf("Expected %d tables, got %d", len(expectedTables), len(c.Tables))
	}

	tableMap := make(map[string]bool)
	for _, table := range c.Tables {
		tableMap[table.Name] = true
	}

	for _, tableName := range expectedTables {
		if !tableMap[tableName] {
			t.Errorf("Expected table %s not found in catalog", tableName)
		}
	}
}

// verifyColumns checks that expected columns exist in a table
func verifyColumns(t *testing.T, table *db.Table, expectedColumns []string) {
	t.Helper()

	columnMap := make(map[string]bool)
	for _, col := range table.Columns {
		columnMap[col.Name] = true
	}

	for _, colName := range expectedColumns {
		if !columnMap[colName] {
			t.Errorf("Expected column %s not found in %s table", colName, table.Name)
		}
	}
}

// verifyPrimaryKey checks that a table has the expected primary key
func verifyPrimaryKey(t *testing.T, table *db.Table, expectedPK []string) {
	t.Helper()

	if len(table.PrimaryKey) != len(expectedPK) {
		t.Errorf("Expected primary key %v, got %v", expectedPK, table.PrimaryKey)
		return
	}

	for i, pk := range expectedPK {
		if table.PrimaryKey[i] != pk {
			t.Errorf("Expected primary key %v, got %v", expectedPK, table.PrimaryKey)
			return
		}
	}
}

// verifyUniqueConstraint checks that a column has a unique constraint
func verifyUniqueConstraint(t *testing.T, c *db.Catalog, tableName, columnName string) {
	t.Helper()

	col := findColumn(t, c, tableName, columnName)
	if col != nil && !col.IsUnique {
		t.Errorf("Expected %s column to have unique constraint", columnName)
	}
}

// verifyNotUnique checks that a column is not flagged unique on its own
func verifyNotUnique(t *testing.T, c *db.Catalog, tableName, columnName string) {
	t.Helper()

	col := findColumn(t, c, tableName, columnName)
	if col != nil && col.IsUnique {
		t.Errorf("Expected %s.%s not to be flagged unique", tableName, columnName)
	}
}

// verifyForeignKey checks that a foreign key relationship exists
func verifyForeignKey(t *testing.T, c *db.Catalog, tableName, sourceColumn, targetTable string) {
	t.Helper()

	table := findTable(c, tableName)
	if table == nil {
		t.Fatalf("Table %s not found", tableName)
		return
	}

	for _, rel := range table.Relations {
		if rel.TargetTable == targetTable && rel.SourceColumn == sourceColumn {
			return
		}
	}

	t.Errorf("Expected foreign key relationship from %s.%s to %s not found", tableName, sourceColumn, targetTable)
}

// verifyIndex checks that an index exists with the expected columns
func verifyIndex(t *testing.T, c *db.Catalog, tableName, indexName string, expectedColumns []string) {
	t.Helper()

	table := findTable(c, tableName)
	if table == nil {
		t.Fatalf("Table %s not found", tableName)
		return
	}

	for _, idx := range table.Indexes {
		if idx.Name == indexName {
			if len(idx.Columns) != len(expectedColumns) {
				t.Errorf("Expected index %s on %v, got %v", indexName, expectedColumns, idx.Columns)
				return
			}
			for i, col := range expectedColumns {
				if idx.Columns[i] != col {
					t.Errorf("Expected index %s on %v, got %v", indexName, expectedColumns, idx.Columns)
					return
				}
			}
			return
		}
	}

	t.Errorf("Expected index %s on %s table not found", indexName, tableName)
}

// verifyEnumValues checks that a column has the expected enum values
func verifyEnumValues(t *testing.T, c *db.Catalog, tableName, columnName string, expectedValues []string) {
	t.Helper()

	col := findColumn(t, c, tableName, columnName)
	if col == nil {
		return
	}
	if len(col.EnumValues) != len(expectedValues) {
		t.Errorf("Expected enum values %v for %s, got %v", expectedValues, columnName, col.EnumValues)
		return
	}
	for i, v := range expectedValues {
		if col.EnumValues[i] != v {
			t.Errorf("Expected enum values %v for %s, got %v", expectedValues, columnName, col.EnumValues)
			return
		}
	}
}

// verifyOnlyTables checks that a filtered extraction returned exactly the requested tables
func verifyOnlyTables(t *testing.T, c *db.Catalog, wanted, unwanted []string) {
	t.Helper()

	if len(c.Tables) != len(wanted) {
		t.Errorf("Expected %d tables, got %d", len(wanted), len(c.Tables))
	}
	for _, name := range wanted {
		if findTable(c, name) == nil {
			t.Errorf("Expected table %s", name)
		}
	}
	for _, name := range unwanted {
		if findTable(c, name) != nil {
			t.Errorf("Should not include table %s", name)
		}
	}
}

func findColumn(t *testing.T, c *db.Catalog, tableName, columnName string) *db.Column {
	t.Helper()

	table := findTable(c, tableName)
	if table == nil {
		t.Fatalf("Table %s not found", tableName)
		return nil
	}
	for i := range table.Columns {
		if table.Columns[i].Name == columnName {
			return &table.Columns[i]
		}
	}
	t.Errorf("Column %s not found in table %s", columnName, tableName)
	return nil
}

// findTable is a helper function to find a table by name in the catalog
func findTable(c *db.Catalog, tableName string) *db.Table {
	for i := range c.Tables {
		if c.Tables[i].Name == tableName {
			return &c.Tables[i]
		}
	}
	return nil
}
