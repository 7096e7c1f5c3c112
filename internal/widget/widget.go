// Package widget implements the four linked display widgets: the property
// scatter plot, the structure viewer, the index slider and the properties
// table. Each widget owns a subtree of elements whose ids embed the widget's
// unique identifier, renders from the active dataset, and exposes a
// notification for the interactions it owns. Widgets never call each other;
// the viz package wires them together.
package widget

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/molscope/molscope/internal/dataset"
)

// newGUID returns the unique identifier embedded in a widget's element ids.
func newGUID() string {
	return uuid.NewString()
}

// elementID builds the id of one element of a widget subtree.
func elementID(widget, part, guid string) string {
	return fmt.Sprintf("molscope-%s-%s-%s", widget, part, guid)
}

// numericNames returns the sorted names of numeric columns.
func numericNames(properties map[string]dataset.Values) []string {
	var names []string
	for name, values := range properties {
		if values.IsNumeric() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// allNames returns all column names, sorted.
func allNames(properties map[string]dataset.Values) []string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
