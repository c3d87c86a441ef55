package component

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// ── Errors ────────────────────────────────────────────────────────────────────

// InvalidComponentType reports an attempt to register a value that is not
// class-like (a struct or pointer to struct). The registry is left unchanged.
type InvalidComponentType struct {
	Name string
	Kind reflect.Kind
}

func (e *InvalidComponentType) Error() string {
	return fmt.Sprintf(
		"component: cannot register %q: %s is not a component type; "+
			"plain %ss must be invoked directly, not resolved by name",
		e.Name, e.Kind, e.Kind,
	)
}

// NotFoundError reports a name with no registration. Known carries every
// currently registered name so callers can surface what IS available.
type NotFoundError struct {
	Name  string
	Known []string
}

func (e *NotFoundError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("component: no component registered as %q (registry is empty)", e.Name)
	}
	return fmt.Sprintf(
		"component: no component registered as %q (registered: %s)",
		e.Name, strings.Join(e.Known, ", "),
	)
}

// ── Registry ──────────────────────────────────────────────────────────────────

// Registry maps string names to component descriptors. Registration is
// expected during the boot phase; lookups dominate afterwards, so reads take
// only the read lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Descriptor)}
}

// Register stores prototype's type under name, overwriting any prior entry.
// prototype may be a struct value, a pointer to struct, or a reflect.Type of
// either. Anything else fails with InvalidComponentType and leaves the
// registry untouched.
//
//	reg.Register("Greeting", Greeting{})
//	reg.Register("Widget", &Widget{})
func (r *Registry) Register(name string, prototype any) error {
	t, ok := prototype.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(prototype)
	}

	kind := reflect.Invalid
	if t != nil {
		kind = t.Kind()
	}

	st, isStruct := normalizeType(t)
	if !isStruct {
		return &InvalidComponentType{Name: name, Kind: kind}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = newDescriptor(name, st)
	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	r.mu.RLock()
	d, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name, Known: r.Names()}
	}
	return d, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
