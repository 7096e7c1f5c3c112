package widget

import (
	"fmt"

	"github.com/molscope/molscope/internal/dataset"
	"github.com/molscope/molscope/internal/element"
)

// Table shows the property values of the current entry, one labeled row per
// property column. Unlike the other widgets it carries no settings and is
// discarded and rebuilt on dataset changes.
type Table struct {
	guid string
	reg  *element.Registry

	properties map[string]dataset.Values
	names      []string
}

// NewTable builds the table for the given property columns, showing entry 0.
func NewTable(reg *element.Registry, properties map[string]dataset.Values) (*Table, error) {
	t := &Table{
		guid:       newGUID(),
		reg:        reg,
		properties: properties,
		names:      allNames(properties),
	}

	for _, name := range t.names {
		cell, err := reg.New(element.Label, elementID("table", name, t.guid))
		if err != nil {
			return nil, err
		}
		initial := ""
		if properties[name].Len() > 0 {
			initial = properties[name].At(0)
		}
		if err := cell.Set(element.AttrInnerText, initial); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// GUID returns the identifier embedded in this widget's element ids.
func (t *Table) GUID() string { return t.guid }

// Names returns the displayed property names in row order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Show fills every row with the values of entry i.
func (t *Table) Show(i int) error {
	for _, name := range t.names {
		values := t.properties[name]
		if i < 0 || i >= values.Len() {
			return fmt.Errorf("entry %d out of range for property %q with %d values", i, name, values.Len())
		}
		cell, err := t.reg.Get(elementID("table", name, t.guid))
		if err != nil {
			return err
		}
		if err := cell.Set(element.AttrInnerText, values.At(i)); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes the table's element subtree.
func (t *Table) Remove() {
	t.reg.RemoveMatching(t.guid)
}
