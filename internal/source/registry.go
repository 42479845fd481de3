package source

import "github.com/rotisserie/eris"

// Registry holds adapters in priority order.
type Registry struct {
	adapters map[string]Adapter
	order    []string
	infos    []Info
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register appends an adapter. Registering a name twice replaces the
// adapter but keeps its original position.
func (r *Registry) Register(a Adapter) {
	name := a.Name()
	if _, ok := r.adapters[name]; !ok {
		r.order = append(r.order, name)
	}
	r.adapters[name] = a
}

// Get returns an adapter by name.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, eris.Errorf("source: unknown source %q", name)
	}
	return a, nil
}

// Select returns the registered adapters in priority order. When names is
// non-empty only those sources are returned, still in priority order;
// unknown names are an error.
func (r *Registry) Select(names []string) ([]Adapter, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := r.adapters[n]; !ok {
			return nil, eris.Errorf("source: unknown source %q", n)
		}
		want[n] = true
	}
	var out []Adapter
	for _, n := range r.order {
		if want[n] {
			out = append(out, r.adapters[n])
		}
	}
	return out, nil
}

// All returns every adapter in priority order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.adapters[n])
	}
	return out
}

// Names returns adapter names in priority order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Infos describes every configured source, including those that are
// disabled or could not be built.
func (r *Registry) Infos() []Info {
	out := make([]Info, len(r.infos))
	copy(out, r.infos)
	return out
}

func (r *Registry) describe(info Info) {
	r.infos = append(r.infos, info)
}
