package formatter

import (
	"errors"
	"strings"
	"testing"

	"github.com/tordrt/surqlschema/internal/schema"
)

func mustRender(t *testing.T, reg *schema.Registry, decls []*schema.Declaration, comments bool) string {
	t.Helper()
	out, err := Render(reg, decls, comments)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return out
}

func lines(s ...string) string {
	return strings.Join(s, "\n") + "\n"
}

func TestRenderPrimaryKey(t *testing.T) {
	reg := schema.NewRegistry()
	person := reg.Declare("Person", nil)
	err := reg.Define(person).
		Table(schema.TableName("person")).
		Field("name", schema.String).
		Field("id", schema.FieldConfig{Type: schema.String, Primary: true}).
		Err()
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	want := lines(
		"DEFINE TABLE person SCHEMALESS;",
		"DEFINE FIELD name ON person TYPE string;",
		"DEFINE FIELD id ON person TYPE record<person>;",
		"DEFINE INDEX idx_person_id ON person FIELDS id UNIQUE;",
		"",
	)
	if got := mustRender(t, reg, []*schema.Declaration{person}, false); got != want {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderTableConfig(t *testing.T) {
	reg := schema.NewRegistry()
	company := reg.Declare("Company", nil)
	err := reg.Define(company).
		Table(schema.TableConfig{
			Tables:  []schema.Table{{Name: "company", Generic: "string"}},
			Mode:    schema.Schemafull,
			Indexes: []schema.Index{{Name: "idx_name", Fields: []string{"name"}, Unique: true}},
		}).
		Field("name", schema.String).
		Field("description", schema.String).
		Err()
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	want := lines(
		"DEFINE TABLE company SCHEMAFULL;",
		"DEFINE FIELD name ON company TYPE string;",
		"DEFINE FIELD description ON company TYPE string;",
		"DEFINE INDEX idx_name ON company FIELDS name UNIQUE;",
		"",
	)
	if got := mustRender(t, reg, []*schema.Declaration{company}, false); got != want {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderNestedObject(t *testing.T) {
	reg := schema.NewRegistry()
	address := reg.Declare("Address", nil)
	employee := reg.Declare("Employee", nil)

	_ = reg.Define(address).Field("city", schema.String).Field("postcode", schema.String).Err()
	err := reg.Define(employee).
		Table(schema.TableName("employee")).
		Field("address", schema.FieldConfig{Type: schema.Object, Typed: schema.RefTo(address)}).
		Err()
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	want := lines(
		"DEFINE TABLE employee SCHEMALESS;",
		"DEFINE FIELD address ON employee TYPE object;",
		"DEFINE FIELD address.city ON employee TYPE string;",
		"DEFINE FIELD address.postcode ON employee TYPE string;",
		"",
	)
	if got := mustRender(t, reg, []*schema.Declaration{employee}, false); got != want {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderNestedCollections(t *testing.T) {
	reg := schema.NewRegistry()
	tag := reg.Declare("Tag", nil)
	geo := reg.Declare("Geo", nil)
	post := reg.Declare("Post", nil)

	_ = reg.Define(geo).Field("lat", schema.Float).Err()
	_ = reg.Define(tag).
		Field("name", schema.FieldConfig{Type: schema.String, Indexed: true}).
		Field("geo", schema.FieldConfig{Type: schema.Option, Typed: schema.RefTo(geo)}).
		Err()
	err := reg.Define(post).
		Table(schema.TableName("post")).
		Field("tags", schema.FieldConfig{Type: schema.Array, Typed: schema.RefTo(tag)}).
		Field("labels", schema.FieldConfig{Type: schema.Set, Typed: schema.RefTo(tag)}).
		Err()
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	want := lines(
		"DEFINE TABLE post SCHEMALESS;",
		"DEFINE FIELD tags ON post TYPE array<object>;",
		"DEFINE FIELD tags.*.name ON post TYPE string;",
		"DEFINE INDEX idx_post_tags___name ON post FIELDS tags.*.name;",
		"DEFINE FIELD tags.*.geo ON post TYPE option<object>;",
		"DEFINE FIELD tags.*.geo.lat ON post TYPE float;",
		"DEFINE FIELD labels ON post TYPE set<object>;",
		"DEFINE FIELD labels.*.name ON post TYPE string;",
		"DEFINE INDEX idx_post_labels___name ON post FIELDS labels.*.name;",
		"DEFINE FIELD labels.*.geo ON post TYPE option<object>;",
		"DEFINE FIELD labels.*.geo.lat ON post TYPE float;",
		"",
	)
	if got := mustRender(t, reg, []*schema.Declaration{post}, false); got != want {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderGenerics(t *testing.T) {
	reg := schema.NewRegistry()
	d := reg.Declare("Generic", nil)
	err := reg.Define(d).
		Table(schema.TableList{{Name: "test1", Generic: "number"}, {Name: "test2"}}).
		Field("value", schema.Generic).
		Field("list", schema.FieldConfig{Type: schema.Array, Typed: schema.TypeName("$$generic")}).
		Field("nested", schema.FieldConfig{Type: schema.Option, Typed: schema.TypeName("array<$$generic>")}).
		Err()
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	want := lines(
		"DEFINE TABLE test1 SCHEMALESS;",
		"DEFINE FIELD value ON test1 TYPE number;",
		"DEFINE FIELD list ON test1 TYPE array<number>;",
		"DEFINE FIELD nested ON test1 TYPE option<array<number>>;",
		"",
		"DEFINE TABLE test2 SCHEMALESS;",
		"DEFINE FIELD value ON test2 TYPE any;",
		"DEFINE FIELD list ON test2 TYPE array<any>;",
		"DEFINE FIELD nested ON test2 TYPE option<array<any>>;",
		"",
	)
	if got := mustRender(t, reg, []*schema.Declaration{d}, false); got != want {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestTypeString(t *testing.T) {
	table := schema.Table{Name: "thing"}
	ref := schema.RefTo(&schema.Declaration{Name: "Other"})

	tests := []struct {
		name string
		cfg  schema.FieldConfig
		want string
	}{
		{"absent type", schema.FieldConfig{}, "any"},
		{"scalar", schema.FieldConfig{Type: schema.Datetime}, "datetime"},
		{"scalar ignores typed", schema.FieldConfig{Type: schema.Geometry, Typed: schema.TypeName("point")}, "geometry"},
		{"optional scalar", schema.FieldConfig{Type: schema.Int, Optional: true}, "option<int>"},
		{"object with name", schema.FieldConfig{Type: schema.Object, Typed: schema.TypeName("string")}, "object"},
		{"object with ref", schema.FieldConfig{Type: schema.Object, Typed: ref}, "object"},
		{"record with name", schema.FieldConfig{Type: schema.Record, Typed: schema.TypeName("user")}, "record<user>"},
		{"array with ref", schema.FieldConfig{Type: schema.Array, Typed: ref}, "array<object>"},
		{"bare composite", schema.FieldConfig{Type: schema.Set}, "set"},
		{"empty type name", schema.FieldConfig{Type: schema.Record, Typed: schema.TypeName("")}, "record"},
		{"option inside option", schema.FieldConfig{Type: schema.Option, Typed: schema.TypeName("string"), Optional: true}, "option<option<string>>"},
		{"primary wins", schema.FieldConfig{Type: schema.Array, Typed: schema.TypeName("int"), Primary: true}, "record<thing>"},
		{"optional primary", schema.FieldConfig{Type: schema.String, Primary: true, Optional: true}, "option<record<thing>>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeString(tt.cfg, table); got != tt.want {
				t.Errorf("TypeString() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderClausesAndIndexes(t *testing.T) {
	reg := schema.NewRegistry()
	d := reg.Declare("Account", nil)
	err := reg.Define(d).
		Table(schema.TableConfig{
			Tables:  []schema.Table{{Name: "account"}},
			Indexes: []schema.Index{{Fields: []string{"email", "tenant"}}, {Name: "by_slug", Fields: []string{"slug"}, Unique: true}},
		}).
		Field("email", schema.FieldConfig{
			Type:    schema.String,
			Assert:  "string::is::email($value)",
			Value:   "string::lowercase($value)",
			Default: "''",
			Unique:  true,
		}).
		Field("tenant", schema.FieldConfig{Type: schema.Record, Typed: schema.TypeName("tenant"), Indexed: true}).
		Field("slug", schema.String).
		Err()
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	want := lines(
		"DEFINE TABLE account SCHEMALESS;",
		"DEFINE FIELD email ON account TYPE string DEFAULT '' VALUE string::lowercase($value) ASSERT string::is::email($value);",
		"DEFINE INDEX idx_account_email ON account FIELDS email UNIQUE;",
		"DEFINE FIELD tenant ON account TYPE record<tenant>;",
		"DEFINE INDEX idx_account_tenant ON account FIELDS tenant;",
		"DEFINE FIELD slug ON account TYPE string;",
		"DEFINE INDEX idx_account_email_tenant ON account FIELDS email, tenant;",
		"DEFINE INDEX by_slug ON account FIELDS slug UNIQUE;",
		"",
	)
	if got := mustRender(t, reg, []*schema.Declaration{d}, false); got != want {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderComments(t *testing.T) {
	reg := schema.NewRegistry()
	d := reg.Declare("Person", nil)
	_ = reg.Define(d).Table(schema.TableName("person")).Field("name", schema.String).Err()

	want := lines(
		"-- ------------------------------",
		"-- TABLE: person",
		"-- ------------------------------",
		"DEFINE TABLE person SCHEMALESS;",
		"DEFINE FIELD name ON person TYPE string;",
		"",
	)
	if got := mustRender(t, reg, []*schema.Declaration{d}, true); got != want {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderInheritedDeclarations(t *testing.T) {
	reg := schema.NewRegistry()
	base := reg.Declare("Base", nil)
	user := reg.Declare("User", base)
	admin := reg.Declare("Admin", user)

	_ = reg.Define(base).Field("created", schema.Datetime).Err()
	_ = reg.Define(user).Table(schema.TableName("user")).Field("name", schema.String).Err()
	_ = reg.Define(admin).Table(schema.TableName("admin")).Field("name", schema.Int).Field("level", schema.Int).Err()

	want := lines(
		"DEFINE TABLE user SCHEMALESS;",
		"DEFINE FIELD created ON user TYPE datetime;",
		"DEFINE FIELD name ON user TYPE string;",
		"",
		"DEFINE TABLE admin SCHEMALESS;",
		"DEFINE FIELD created ON admin TYPE datetime;",
		"DEFINE FIELD name ON admin TYPE int;",
		"DEFINE FIELD level ON admin TYPE int;",
		"",
	)
	if got := mustRender(t, reg, []*schema.Declaration{user, admin}, false); got != want {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderWithoutTables(t *testing.T) {
	reg := schema.NewRegistry()
	address := reg.Declare("Address", nil)
	_ = reg.RegisterField(address, "city", schema.String)

	if got := mustRender(t, reg, []*schema.Declaration{address}, false); got != "" {
		t.Errorf("Expected no output for a declaration without tables, got %q", got)
	}
}

func TestRenderNotRegistered(t *testing.T) {
	reg := schema.NewRegistry()
	d := reg.Declare("Ghost", nil)

	if _, err := Render(reg, []*schema.Declaration{d}, false); !errors.Is(err, schema.ErrNotRegistered) {
		t.Errorf("Expected ErrNotRegistered, got %v", err)
	}
	if _, err := Render(reg, []*schema.Declaration{nil}, false); !errors.Is(err, schema.ErrNotRegistered) {
		t.Errorf("Expected ErrNotRegistered for nil declaration, got %v", err)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	reg := schema.NewRegistry()
	d := reg.Declare("Wide", nil)
	b := reg.Define(d).Table(schema.TableName("wide"))
	for _, name := range []string{"zeta", "alpha", "mu", "beta", "omega", "gamma", "kappa", "delta"} {
		b.Field(name, schema.FieldConfig{Type: schema.String, Indexed: true})
	}
	if err := b.Err(); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	first := mustRender(t, reg, []*schema.Declaration{d}, true)
	for i := 0; i < 20; i++ {
		if got := mustRender(t, reg, []*schema.Declaration{d}, true); got != first {
			t.Fatalf("Render %d differs from first render", i)
		}
	}
	if !strings.Contains(first, "DEFINE FIELD zeta ON wide TYPE string;\nDEFINE INDEX idx_wide_zeta ON wide FIELDS zeta;\nDEFINE FIELD alpha") {
		t.Errorf("Expected fields in registration order, got:\n%s", first)
	}
}

func TestMissingGenerics(t *testing.T) {
	reg := schema.NewRegistry()
	d := reg.Declare("Generic", nil)
	_ = reg.Define(d).
		Table(schema.TableList{{Name: "typed", Generic: "int"}, {Name: "untyped"}}).
		Field("value", schema.Generic).
		Field("list", schema.FieldConfig{Type: schema.Set, Typed: schema.TypeName("$$generic")}).
		Field("owner", schema.FieldConfig{Type: schema.Generic, Primary: true}).
		Field("name", schema.String).
		Err()

	desc, _ := reg.Resolve(d)
	if got := MissingGenerics(desc, desc.Tables[0]); len(got) != 0 {
		t.Errorf("Expected no missing generics on typed table, got %v", got)
	}
	got := MissingGenerics(desc, desc.Tables[1])
	if strings.Join(got, ",") != "value,list" {
		t.Errorf("Expected [value list], got %v", got)
	}
}
