package widget

import (
	"fmt"
	"strconv"

	"github.com/molscope/molscope/internal/dataset"
	"github.com/molscope/molscope/internal/element"
	"github.com/molscope/molscope/internal/settings"
)

// Viewer is the 3D structure display. The server side holds the current
// structure and the rendering settings; clients render the XYZ block
// mirrored into the viewer's structure element.
type Viewer struct {
	guid string
	reg  *element.Registry

	structures []dataset.Structure
	current    int

	group        *settings.Group
	bonds        *settings.Option[bool]
	spaceFilling *settings.Option[bool]
	atomLabels   *settings.Option[bool]
	rotation     *settings.Option[bool]
	supercell    [3]*settings.Option[int]
}

// NewViewer builds the viewer showing the first structure.
func NewViewer(reg *element.Registry, structures []dataset.Structure) (*Viewer, error) {
	if len(structures) == 0 {
		return nil, fmt.Errorf("cannot build a viewer without structures")
	}

	v := &Viewer{
		guid:       newGUID(),
		reg:        reg,
		structures: structures,
	}

	v.bonds = settings.NewBool(true)
	v.spaceFilling = settings.NewBool(false)
	v.atomLabels = settings.NewBool(false)
	v.rotation = settings.NewBool(false)
	for i := range v.supercell {
		opt := settings.NewInt(1)
		opt.Validate = func(n int) error {
			if n < 1 || n > 10 {
				return fmt.Errorf("supercell repetitions must be in [1, 10], got %d", n)
			}
			return nil
		}
		v.supercell[i] = opt
	}

	for part, opt := range map[string]*settings.Option[bool]{
		"bonds":        v.bonds,
		"spacefilling": v.spaceFilling,
		"atomlabels":   v.atomLabels,
		"rotation":     v.rotation,
	} {
		cb, err := reg.New(element.Checkbox, elementID("viewer", part, v.guid))
		if err != nil {
			return nil, err
		}
		if err := opt.Bind(cb, element.AttrChecked); err != nil {
			return nil, err
		}
	}

	for i, axis := range []string{"supercell-a", "supercell-b", "supercell-c"} {
		in, err := reg.New(element.Input, elementID("viewer", axis, v.guid))
		if err != nil {
			return nil, err
		}
		if err := v.supercell[i].Bind(in, element.AttrValue); err != nil {
			return nil, err
		}
	}

	structEl, err := reg.New(element.Label, elementID("viewer", "structure", v.guid))
	if err != nil {
		return nil, err
	}
	if err := structEl.Set(element.AttrInnerText, string(structures[0])); err != nil {
		return nil, err
	}
	indexEl, err := reg.New(element.Label, elementID("viewer", "index", v.guid))
	if err != nil {
		return nil, err
	}
	if err := indexEl.Set(element.AttrInnerText, "0"); err != nil {
		return nil, err
	}

	supercell := settings.NewGroup()
	supercell.Add("a", v.supercell[0])
	supercell.Add("b", v.supercell[1])
	supercell.Add("c", v.supercell[2])

	v.group = settings.NewGroup()
	v.group.Add("bonds", v.bonds)
	v.group.Add("spaceFilling", v.spaceFilling)
	v.group.Add("atomLabels", v.atomLabels)
	v.group.Add("rotation", v.rotation)
	v.group.AddGroup("supercell", supercell)

	return v, nil
}

// GUID returns the identifier embedded in this widget's element ids.
func (v *Viewer) GUID() string { return v.guid }

// Settings returns the viewer settings tree.
func (v *Viewer) Settings() *settings.Group { return v.group }

// Show displays the structure at index i.
func (v *Viewer) Show(i int) error {
	if i < 0 || i >= len(v.structures) {
		return fmt.Errorf("structure %d out of range, have %d structures", i, len(v.structures))
	}
	v.current = i

	structEl, err := v.reg.Get(elementID("viewer", "structure", v.guid))
	if err != nil {
		return err
	}
	if err := structEl.Set(element.AttrInnerText, string(v.structures[i])); err != nil {
		return err
	}
	indexEl, err := v.reg.Get(elementID("viewer", "index", v.guid))
	if err != nil {
		return err
	}
	return indexEl.Set(element.AttrInnerText, strconv.Itoa(i))
}

// Current returns the index of the displayed structure.
func (v *Viewer) Current() int { return v.current }

// Reset swaps the viewer to a new structure list in place, keeping widget
// identity and settings, and shows the first structure.
func (v *Viewer) Reset(structures []dataset.Structure) error {
	if len(structures) == 0 {
		return fmt.Errorf("cannot reset viewer without structures")
	}
	v.structures = structures
	return v.Show(0)
}

// Remove unbinds all viewer settings and deletes the viewer's element
// subtree.
func (v *Viewer) Remove() {
	v.group.UnbindAll()
	v.reg.RemoveMatching(v.guid)
}
