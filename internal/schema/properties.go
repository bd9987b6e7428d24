package schema

// Properties is an insertion-ordered set of named fields.
// Overwriting a name keeps its original position.
type Properties struct {
	names  []string
	fields map[string]FieldConfig
}

// NewProperties creates an empty field set
func NewProperties() *Properties {
	return &Properties{fields: make(map[string]FieldConfig)}
}

// Set stores cfg under name
func (p *Properties) Set(name string, cfg FieldConfig) {
	if _, ok := p.fields[name]; !ok {
		p.names = append(p.names, name)
	}
	p.fields[name] = cfg
}

// Get returns the field stored under name
func (p *Properties) Get(name string) (FieldConfig, bool) {
	if p == nil {
		return FieldConfig{}, false
	}
	cfg, ok := p.fields[name]
	return cfg, ok
}

// Names returns the field names in insertion order
func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len returns the number of fields
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Each calls fn for every field in insertion order
func (p *Properties) Each(fn func(name string, cfg FieldConfig)) {
	if p == nil {
		return
	}
	for _, name := range p.names {
		fn(name, p.fields[name])
	}
}

// Clone returns a shallow copy. Nested Properties are shared.
func (p *Properties) Clone() *Properties {
	out := NewProperties()
	p.Each(out.Set)
	return out
}

// deepClone copies p and every nested field set
func (p *Properties) deepClone() *Properties {
	out := NewProperties()
	p.Each(func(name string, cfg FieldConfig) {
		if cfg.Properties != nil {
			cfg.Properties = cfg.Properties.deepClone()
		}
		out.Set(name, cfg)
	})
	return out
}

// mergeProperties returns parent's fields followed by own's, own winning on
// name collision
func mergeProperties(parent, own *Properties) *Properties {
	out := parent.Clone()
	own.Each(out.Set)
	return out
}
