package element

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry owns a namespace of elements. Widgets create their elements here,
// the settings layer resolves bind targets through Get, and the sync hub
// feeds client changes in through Dispatch and mirrors server-side mutations
// out through the OnUpdate hook.
type Registry struct {
	mu       sync.RWMutex
	elements map[string]*Element
	onUpdate func(id, attr, value string)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{elements: make(map[string]*Element)}
}

// New creates and registers an element. The id must be unique within the
// registry.
func (r *Registry) New(kind Kind, id string) (*Element, error) {
	if _, ok := kindAttributes[kind]; !ok {
		return nil, fmt.Errorf("unknown element kind %q", kind)
	}
	if id == "" {
		return nil, fmt.Errorf("element id must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.elements[id]; exists {
		return nil, fmt.Errorf("element %q already exists", id)
	}

	e := &Element{
		id:        id,
		kind:      kind,
		reg:       r,
		attrs:     make(map[string]string),
		listeners: make(map[int]func()),
	}
	if kind == Checkbox {
		e.attrs[AttrChecked] = "false"
	}
	r.elements[id] = e
	return e, nil
}

// MustNew is New for ids the caller just generated; it panics on error.
func (r *Registry) MustNew(kind Kind, id string) *Element {
	e, err := r.New(kind, id)
	if err != nil {
		panic(err)
	}
	return e
}

// Get resolves an element id, failing with a descriptive error when absent.
func (r *Registry) Get(id string) (*Element, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.elements[id]
	if !ok {
		return nil, fmt.Errorf("could not find element with id %q", id)
	}
	return e, nil
}

// Dispatch routes a client-originated change to the named element, updating
// its attribute and notifying its change listeners.
func (r *Registry) Dispatch(id, attr, value string) error {
	e, err := r.Get(id)
	if err != nil {
		return err
	}
	return e.dispatch(attr, value)
}

// Remove deletes a single element. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.elements, id)
}

// RemoveMatching deletes every element whose id contains substr and returns
// how many were removed. Widgets use this to empty their subtree, since all
// their element ids embed the widget identifier.
func (r *Registry) RemoveMatching(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id := range r.elements {
		if strings.Contains(id, substr) {
			delete(r.elements, id)
			removed++
		}
	}
	return removed
}

// IDs returns all registered element ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.elements))
	for id := range r.elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OnUpdate installs the hook invoked for every server-side attribute
// mutation. A nil hook disables mirroring.
func (r *Registry) OnUpdate(fn func(id, attr, value string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onUpdate = fn
}

// Snapshot returns the current attribute state of every element, keyed by
// element id. Used to bring newly connected clients up to date. Alongside
// the attributes it carries a "kind" entry and, for selects, a
// newline-joined "choices" entry so clients can render the right control.
func (r *Registry) Snapshot() map[string]map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]map[string]string, len(r.elements))
	for id, e := range r.elements {
		e.mu.Lock()
		attrs := make(map[string]string, len(e.attrs)+3)
		for k, v := range e.attrs {
			attrs[k] = v
		}
		attrs["kind"] = string(e.kind)
		if e.kind == Select {
			attrs["choices"] = strings.Join(e.choices, "\n")
		}
		if e.SupportsDisabled() && e.disabled {
			attrs["disabled"] = "true"
		}
		e.mu.Unlock()
		out[id] = attrs
	}
	return out
}

func (r *Registry) notify(id, attr, value string) {
	r.mu.RLock()
	fn := r.onUpdate
	r.mu.RUnlock()

	if fn != nil {
		fn(id, attr, value)
	}
}
