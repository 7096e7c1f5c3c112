// Package element models the interface elements mirrored between the server
// and connected browser clients. Each element has a kind with a fixed set of
// attributes; attribute values cross the wire as strings. Program code mutates
// elements through Set, client interactions arrive through Registry.Dispatch.
package element

import (
	"fmt"
	"strings"
	"sync"
)

// Kind identifies the element variety and fixes its attribute set.
type Kind string

const (
	Input    Kind = "input"
	Checkbox Kind = "checkbox"
	Select   Kind = "select"
	Range    Kind = "range"
	Label    Kind = "label"
)

// Well-known attribute names.
const (
	AttrValue     = "value"
	AttrChecked   = "checked"
	AttrInnerText = "innerText"
	AttrMin       = "min"
	AttrMax       = "max"
	AttrStep      = "step"
)

// kindAttributes enumerates the attributes each kind accepts.
var kindAttributes = map[Kind]map[string]bool{
	Input:    {AttrValue: true},
	Checkbox: {AttrChecked: true},
	Select:   {AttrValue: true},
	Range:    {AttrValue: true, AttrMin: true, AttrMax: true, AttrStep: true},
	Label:    {AttrInnerText: true},
}

// kindEmitsChange marks the kinds a user can interact with. Labels only
// display values and never dispatch changes.
var kindEmitsChange = map[Kind]bool{
	Input:    true,
	Checkbox: true,
	Select:   true,
	Range:    true,
}

// Element is a single mirrored interface element. Elements are created
// through a Registry and must not be shared between registries.
type Element struct {
	id   string
	kind Kind
	reg  *Registry

	mu           sync.Mutex
	attrs        map[string]string
	choices      []string
	disabled     bool
	listeners    map[int]func()
	nextListener int
}

// ID returns the element identifier.
func (e *Element) ID() string { return e.id }

// Kind returns the element kind.
func (e *Element) Kind() Kind { return e.kind }

// Get returns the current value of the named attribute. Attributes start
// empty; checkbox "checked" starts as "false".
func (e *Element) Get(attr string) (string, error) {
	if !kindAttributes[e.kind][attr] {
		return "", fmt.Errorf("element %q (%s) has no attribute %q", e.id, e.kind, attr)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attrs[attr], nil
}

// Set assigns the named attribute and mirrors the new value to clients. It
// does not notify change listeners: those fire only for client-originated
// changes, matching the behavior of programmatic value assignment in a
// browser.
func (e *Element) Set(attr, value string) error {
	if !kindAttributes[e.kind][attr] {
		return fmt.Errorf("element %q (%s) has no attribute %q", e.id, e.kind, attr)
	}
	e.mu.Lock()
	e.attrs[attr] = value
	e.mu.Unlock()

	e.reg.notify(e.id, attr, value)
	return nil
}

// OnChange registers fn to run after a client-originated change to this
// element. The returned function removes the listener; it is safe to call
// more than once.
func (e *Element) OnChange(fn func()) (remove func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextListener
	e.nextListener++
	e.listeners[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// dispatch stores a client-provided attribute value and notifies listeners.
func (e *Element) dispatch(attr, value string) error {
	if !kindEmitsChange[e.kind] {
		return fmt.Errorf("element %q (%s) does not accept changes", e.id, e.kind)
	}
	if !kindAttributes[e.kind][attr] {
		return fmt.Errorf("element %q (%s) has no attribute %q", e.id, e.kind, attr)
	}

	e.mu.Lock()
	e.attrs[attr] = value
	fns := make([]func(), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

// SupportsDisabled reports whether this element kind carries a disabled flag.
func (e *Element) SupportsDisabled() bool {
	return kindEmitsChange[e.kind]
}

// Disabled returns the disabled flag. Always false for kinds without one.
func (e *Element) Disabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disabled
}

// SetDisabled updates the disabled flag and mirrors it to clients. It is a
// no-op for kinds without a disabled flag.
func (e *Element) SetDisabled(disabled bool) {
	if !e.SupportsDisabled() {
		return
	}
	e.mu.Lock()
	e.disabled = disabled
	e.mu.Unlock()

	if disabled {
		e.reg.notify(e.id, "disabled", "true")
	} else {
		e.reg.notify(e.id, "disabled", "false")
	}
}

// SetChoices replaces the choice list of a select element and mirrors the
// new list to clients.
func (e *Element) SetChoices(choices []string) error {
	if e.kind != Select {
		return fmt.Errorf("element %q (%s) has no choices", e.id, e.kind)
	}
	e.mu.Lock()
	e.choices = append([]string(nil), choices...)
	e.mu.Unlock()

	e.reg.notify(e.id, "choices", strings.Join(choices, "\n"))
	return nil
}

// Choices returns a copy of the choice list of a select element.
func (e *Element) Choices() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.choices...)
}
