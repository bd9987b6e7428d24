package schema

// Builder attaches metadata to one declaration with chained calls.
// The first error stops further registration and is reported by Err.
//
//	person := reg.Declare("Person", nil)
//	err := reg.Define(person).
//		Table(schema.TableName("person")).
//		Field("name", schema.String).
//		Field("id", schema.FieldConfig{Type: schema.String, Primary: true}).
//		Err()
type Builder struct {
	reg  *Registry
	decl *Declaration
	err  error
}

// Define starts a builder for d
func (r *Registry) Define(d *Declaration) *Builder {
	return &Builder{reg: r, decl: d}
}

// Table registers the table configuration
func (b *Builder) Table(spec TableSpec) *Builder {
	if b.err == nil {
		b.err = b.reg.RegisterTable(b.decl, spec)
	}
	return b
}

// Field registers one field
func (b *Builder) Field(name string, spec FieldSpec) *Builder {
	if b.err == nil {
		b.err = b.reg.RegisterField(b.decl, name, spec)
	}
	return b
}

// Declaration returns the declaration being built
func (b *Builder) Declaration() *Declaration {
	return b.decl
}

// Err returns the first registration error
func (b *Builder) Err() error {
	return b.err
}
