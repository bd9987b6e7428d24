package main

import (
	"errors"
	"testing"

	"github.com/tordrt/surqlschema"
)

func TestSelectDeclarations(t *testing.T) {
	reg := surqlschema.NewRegistry()
	person := reg.Declare("Person", nil)
	company := reg.Declare("Company", nil)
	address := reg.Declare("Address", nil)
	all := []*surqlschema.Declaration{person, company, address}

	tests := []struct {
		name      string
		names     []string
		wantDecls []*surqlschema.Declaration
		wantErr   bool
	}{
		{
			name:      "no names keeps all",
			names:     nil,
			wantDecls: all,
		},
		{
			name:      "single declaration",
			names:     []string{"Company"},
			wantDecls: []*surqlschema.Declaration{company},
		},
		{
			name:      "requested order wins",
			names:     []string{"Address", "Person"},
			wantDecls: []*surqlschema.Declaration{address, person},
		},
		{
			name:    "unknown declaration",
			names:   []string{"Invoice"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectDeclarations(all, tt.names)
			if tt.wantErr {
				if !errors.Is(err, surqlschema.ErrUnknownDeclaration) {
					t.Errorf("selectDeclarations() error = %v, want ErrUnknownDeclaration", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("selectDeclarations() unexpected error: %v", err)
			}

			if len(got) != len(tt.wantDecls) {
				t.Fatalf("selectDeclarations() returned %d declarations, want %d", len(got), len(tt.wantDecls))
			}
			for i, d := range got {
				if d != tt.wantDecls[i] {
					t.Errorf("selectDeclarations()[%d] = %s, want %s", i, d.Name, tt.wantDecls[i].Name)
				}
			}
		})
	}
}

func TestParseTableList(t *testing.T) {
	tests := []struct {
		name       string
		tablesStr  string
		wantTables []string
	}{
		{
			name:       "single table",
			tablesStr:  "users",
			wantTables: []string{"users"},
		},
		{
			name:       "multiple tables",
			tablesStr:  "users,posts,comments",
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "tables with spaces",
			tablesStr:  "users, posts, comments",
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "empty string",
			tablesStr:  "",
			wantTables: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTables := parseTableList(tt.tablesStr)

			if len(gotTables) != len(tt.wantTables) {
				t.Errorf("parseTableList() returned %d tables, want %d", len(gotTables), len(tt.wantTables))
				return
			}

			for i, table := range gotTables {
				if table != tt.wantTables[i] {
					t.Errorf("parseTableList() table[%d] = %s, want %s", i, table, tt.wantTables[i])
				}
			}
		})
	}
}

func TestValidateSources(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		sqlite  string
		mysql   string
		wantErr bool
	}{
		{name: "no source", wantErr: true},
		{name: "schema file", config: "schema.yaml"},
		{name: "sqlite", sqlite: "app.db"},
		{name: "two sources", config: "schema.yaml", mysql: "root@tcp(localhost)/app", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schemaFile, sqlitePath, mysqlURL, dbURL = tt.config, tt.sqlite, tt.mysql, ""
			t.Cleanup(func() { schemaFile, sqlitePath, mysqlURL = "", "", "" })

			err := validateSources()
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSources() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	t.Cleanup(func() { sqlitePath, mysqlURL, dbURL = "", "", "" })

	sqlitePath, mysqlURL, dbURL = "data/app.db", "", ""
	if got := databaseURL(); got != "sqlite://data/app.db" {
		t.Errorf("databaseURL() = %q, want sqlite://data/app.db", got)
	}

	sqlitePath, mysqlURL = "", "root@tcp(localhost:3306)/shop"
	if got := databaseURL(); got != "mysql://root@tcp(localhost:3306)/shop" {
		t.Errorf("databaseURL() = %q, want mysql:// prefix", got)
	}

	mysqlURL, dbURL = "", "postgres://localhost/shop"
	if got := databaseURL(); got != "postgres://localhost/shop" {
		t.Errorf("databaseURL() = %q, want postgres URL unchanged", got)
	}
}
