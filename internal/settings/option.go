// Package settings implements the typed two-way binding layer between
// in-memory values and interface elements, plus the Group tree used to save
// and restore all values as a plain serializable tree.
//
// An Option holds a single validated value of one of four kinds (string, int,
// float, bool) and keeps any number of bound element attributes in sync with
// it. Values cross the element boundary as strings and are parsed per kind.
package settings

import (
	"github.com/molscope/molscope/internal/element"
	"github.com/molscope/molscope/internal/warnings"
)

// Origin tags where a value change came from, so change callbacks can tell
// programmatic updates apart from user interaction.
type Origin int

const (
	// OriginCode marks changes made by program code through SetValue or a
	// settings restore.
	OriginCode Origin = iota
	// OriginClient marks changes triggered by user interaction with a bound
	// element.
	OriginClient
)

func (o Origin) String() string {
	if o == OriginClient {
		return "client"
	}
	return "code"
}

// Kind identifies the value type an Option carries on the wire.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
)

// Value is the kind-erased view of an Option, used by Group to traverse
// heterogeneous settings trees.
type Value interface {
	Kind() Kind
	UnbindAll()
	save() any
	applyAny(v any) error
}

// Option is a single typed value synchronized with zero or more element
// attributes. The zero value is not usable; use one of the New constructors.
//
// Validate, when set, runs before any value change is accepted: if it returns
// an error, the update is aborted and neither the stored value nor any bound
// element is touched. OnChange, when set, runs after every successful change
// with the new value and its origin.
type Option[T any] struct {
	kind   Kind
	value  T
	parse  func(string) (T, error)
	format func(T) string

	Validate func(T) error
	OnChange func(value T, origin Origin)

	bindings []binding
}

type binding struct {
	el     *element.Element
	attr   string
	remove func()
}

// NewString creates a string Option. The wire format is the value itself.
func NewString(initial string) *Option[string] {
	return &Option[string]{
		kind:   KindString,
		value:  initial,
		parse:  func(s string) (string, error) { return s, nil },
		format: func(s string) string { return s },
	}
}

// NewInt creates an int Option. Parsing accepts a base-10 integer prefix of
// the input, so "3" and "3abc" both parse to 3.
func NewInt(initial int) *Option[int] {
	return &Option[int]{
		kind:   KindInt,
		value:  initial,
		parse:  parseIntPrefix,
		format: formatInt,
	}
}

// NewFloat creates a float Option with the same prefix leniency as NewInt.
func NewFloat(initial float64) *Option[float64] {
	return &Option[float64]{
		kind:   KindFloat,
		value:  initial,
		parse:  parseFloatPrefix,
		format: formatFloat,
	}
}

// NewBool creates a bool Option. Only the literal strings "true" and "false"
// parse; anything else fails and leaves the prior value intact.
func NewBool(initial bool) *Option[bool] {
	return &Option[bool]{
		kind:   KindBool,
		value:  initial,
		parse:  parseBool,
		format: formatBool,
	}
}

// Kind returns the option's value kind.
func (o *Option[T]) Kind() Kind { return o.kind }

// Value returns the current value. It always satisfies the last successful
// Validate call.
func (o *Option[T]) Value() T { return o.value }

// SetValue converts v to its wire form and routes it through the same update
// path used for client-originated changes, tagged as a code-originated
// change.
func (o *Option[T]) SetValue(v T) error {
	return o.update(o.format(v), OriginCode)
}

// update is the single path every value change takes: parse, validate, store,
// push to bound elements, then notify. A parse or validation failure aborts
// the update with the stored value and all bound elements untouched.
func (o *Option[T]) update(raw string, origin Origin) error {
	parsed, err := o.parse(raw)
	if err != nil {
		return err
	}
	if o.Validate != nil {
		if err := o.Validate(parsed); err != nil {
			return err
		}
	}

	o.value = parsed
	formatted := o.format(parsed)
	for _, b := range o.bindings {
		// The attribute was checked at bind time, this cannot fail.
		_ = b.el.Set(b.attr, formatted)
	}

	if o.OnChange != nil {
		o.OnChange(parsed, origin)
	}
	return nil
}

// Bind attaches the option to an element attribute: the current value is
// pushed onto the attribute immediately, and client-originated changes to the
// element feed back into the option. An unknown attribute fails the bind.
//
// Client values that fail to parse or validate are reported on the warning
// channel; the element keeps whatever the user entered until the next
// successful update pushes a value back.
func (o *Option[T]) Bind(el *element.Element, attr string) error {
	if err := el.Set(attr, o.format(o.value)); err != nil {
		return err
	}

	b := binding{el: el, attr: attr}
	b.remove = el.OnChange(func() {
		raw, err := el.Get(attr)
		if err != nil {
			return
		}
		if err := o.update(raw, OriginClient); err != nil {
			warnings.Warn("invalid value %q for element %q: %v", raw, el.ID(), err)
		}
	})
	o.bindings = append(o.bindings, b)
	return nil
}

// BindID resolves id in the registry and binds to it, failing with the
// registry's lookup error when the element does not exist.
func (o *Option[T]) BindID(reg *element.Registry, id, attr string) error {
	el, err := reg.Get(id)
	if err != nil {
		return err
	}
	return o.Bind(el, attr)
}

// UnbindAll removes every change listener registered by Bind and clears the
// binding list. It is idempotent.
func (o *Option[T]) UnbindAll() {
	for _, b := range o.bindings {
		b.remove()
	}
	o.bindings = nil
}

// Enabled inspects the disabled flag across bound elements that carry one.
// With checkAll false it reports whether any such element is enabled; with
// checkAll true, whether all of them are.
func (o *Option[T]) Enabled(checkAll bool) bool {
	if checkAll {
		for _, b := range o.bindings {
			if b.el.SupportsDisabled() && b.el.Disabled() {
				return false
			}
		}
		return true
	}
	for _, b := range o.bindings {
		if b.el.SupportsDisabled() && !b.el.Disabled() {
			return true
		}
	}
	return false
}

// Disabled is the logical complement of Enabled with inverted checkAll.
func (o *Option[T]) Disabled(checkAll bool) bool {
	return !o.Enabled(!checkAll)
}

// Enable clears the disabled flag on every bound element that supports it.
func (o *Option[T]) Enable() {
	for _, b := range o.bindings {
		b.el.SetDisabled(false)
	}
}

// Disable sets the disabled flag on every bound element that supports it.
func (o *Option[T]) Disable() {
	for _, b := range o.bindings {
		b.el.SetDisabled(true)
	}
}

func (o *Option[T]) save() any {
	return o.value
}

func (o *Option[T]) applyAny(v any) error {
	raw, err := anyToRaw(v)
	if err != nil {
		return err
	}
	return o.update(raw, OriginCode)
}

var _ Value = (*Option[string])(nil)
