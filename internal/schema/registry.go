package schema

import (
	"fmt"
	"sync"
)

// Registry holds the descriptor of every declaration that received metadata.
//
// Metadata is normally attached once, during a schema construction phase,
// and read any number of times afterwards by the formatters.
type Registry struct {
	mu          sync.RWMutex
	decls       []*Declaration
	byName      map[string]*Declaration
	descriptors map[*Declaration]*Descriptor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byName:      make(map[string]*Declaration),
		descriptors: make(map[*Declaration]*Descriptor),
	}
}

// Declare creates a declaration handle extending parent (which may be nil)
func (r *Registry) Declare(name string, parent *Declaration) *Declaration {
	d := &Declaration{Name: name, Parent: parent}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.track(d)
	return d
}

// Lookup returns the most recently declared declaration with the given name
func (r *Registry) Lookup(name string) (*Declaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Declarations returns all known declarations in declaration order
func (r *Registry) Declarations() []*Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Declaration, len(r.decls))
	copy(out, r.decls)
	return out
}

// Descriptor returns the descriptor owned by d itself
func (r *Registry) Descriptor(d *Declaration) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.descriptors[d]
	return desc, ok
}

// Resolve returns the descriptor visible from d: its own, or the nearest
// ancestor's when d never received metadata itself. The result is live;
// use Snapshot when registration can run concurrently.
func (r *Registry) Resolve(d *Declaration) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc := r.resolve(d)
	return desc, desc != nil
}

// Snapshot returns a deep copy of the descriptor visible from d, taken under
// the read lock. Formatters render from snapshots so that registration may
// continue on other goroutines.
func (r *Registry) Snapshot(d *Declaration) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc := r.resolve(d)
	if desc == nil {
		return nil, false
	}
	return desc.clone(), true
}

// RegisterField attaches field metadata to d. A bare FieldType is stored as
// FieldConfig{Type: t}. An existing field with the same name is replaced.
func (r *Registry) RegisterField(d *Declaration, name string, spec FieldSpec) error {
	if d == nil {
		return fmt.Errorf("field %q: %w", name, ErrInvalidTarget)
	}
	if name == "" {
		return fmt.Errorf("field on %s: empty name: %w", d.Name, ErrInvalidTarget)
	}

	var cfg FieldConfig
	if spec != nil {
		cfg = spec.fieldConfig()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Nested fields are copied now; later changes to the referenced
	// declaration are not seen by this field.
	cfg.Properties = nil
	if ref, ok := cfg.Typed.(Ref); ok && cfg.Type.IsComposite() && ref.Decl != nil {
		if refDesc := r.resolve(ref.Decl); refDesc != nil {
			cfg.Properties = refDesc.Properties.Clone()
		}
	}

	desc := r.ensure(d)
	desc.Properties.Set(name, cfg)
	return nil
}

// RegisterTable attaches table metadata to d
func (r *Registry) RegisterTable(d *Declaration, spec TableSpec) error {
	if d == nil {
		return fmt.Errorf("table: %w", ErrInvalidTarget)
	}
	if spec == nil {
		return fmt.Errorf("table on %s: no tables given: %w", d.Name, ErrInvalidTarget)
	}
	cfg := spec.tableConfig()

	r.mu.Lock()
	defer r.mu.Unlock()

	desc := r.ensure(d)
	desc.Tables = append([]Table(nil), cfg.Tables...)
	desc.Mode = cfg.Mode
	if desc.Mode == "" {
		desc.Mode = Schemaless
	}
	desc.Indexes = append([]Index(nil), cfg.Indexes...)
	return nil
}

// ensure creates d's descriptor if needed and merges the inherited fields
// into it. The merge runs on every registration so the result does not
// depend on the order in which tables and fields are attached.
func (r *Registry) ensure(d *Declaration) *Descriptor {
	desc, ok := r.descriptors[d]
	if !ok {
		desc = &Descriptor{Properties: NewProperties()}
		r.descriptors[d] = desc
		r.track(d)
	}

	if parent := r.resolve(d.Parent); parent != nil {
		desc.Properties = mergeProperties(parent.Properties, desc.Properties)
	}
	return desc
}

func (r *Registry) resolve(d *Declaration) *Descriptor {
	for ; d != nil; d = d.Parent {
		if desc, ok := r.descriptors[d]; ok {
			return desc
		}
	}
	return nil
}

func (r *Registry) track(d *Declaration) {
	for _, known := range r.decls {
		if known == d {
			return
		}
	}
	r.decls = append(r.decls, d)
	if d.Name != "" {
		r.byName[d.Name] = d
	}
}
