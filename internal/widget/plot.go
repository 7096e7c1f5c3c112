package widget

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/molscope/molscope/internal/dataset"
	"github.com/molscope/molscope/internal/element"
	"github.com/molscope/molscope/internal/settings"
)

// Plot is the property scatter plot: each point is one structure (or
// environment), positioned by two numeric property columns. The plot owns
// the axis settings and the current selection; clicking a point on a client
// dispatches the new index back here.
type Plot struct {
	guid string
	reg  *element.Registry

	properties map[string]dataset.Values
	numeric    []string
	count      int

	group    *settings.Group
	x        *settings.Option[string]
	y        *settings.Option[string]
	color    *settings.Option[string]
	size     *settings.Option[float64]
	selected *settings.Option[int]

	onSelect func(index int)
}

// NewPlot builds the plot for the given property columns. At least one
// numeric column is required for the axes; count is the number of points.
func NewPlot(reg *element.Registry, properties map[string]dataset.Values, count int) (*Plot, error) {
	numeric := numericNames(properties)
	if len(numeric) == 0 {
		return nil, fmt.Errorf("cannot build a plot: no numeric properties")
	}
	if count <= 0 {
		return nil, fmt.Errorf("cannot build a plot of %d points", count)
	}

	p := &Plot{
		guid:       newGUID(),
		reg:        reg,
		properties: properties,
		numeric:    numeric,
		count:      count,
	}

	p.x = settings.NewString(numeric[0])
	p.y = settings.NewString(numeric[min(1, len(numeric)-1)])
	p.color = settings.NewString("")
	p.size = settings.NewFloat(50)
	p.selected = settings.NewInt(0)

	p.x.Validate = p.validateAxis
	p.y.Validate = p.validateAxis
	p.color.Validate = func(name string) error {
		if name == "" {
			return nil
		}
		return p.validateAxis(name)
	}
	p.size.Validate = func(v float64) error {
		// NaN fails both range comparisons, check it explicitly.
		if math.IsNaN(v) || v <= 0 || v > 100 {
			return fmt.Errorf("marker size must be in (0, 100], got %g", v)
		}
		return nil
	}
	p.selected.Validate = func(i int) error {
		if i < 0 || i >= p.count {
			return fmt.Errorf("selected index %d out of range, have %d points", i, p.count)
		}
		return nil
	}
	p.selected.OnChange = func(i int, origin settings.Origin) {
		if label, err := reg.Get(elementID("plot", "current", p.guid)); err == nil {
			_ = label.Set(element.AttrInnerText, strconv.Itoa(i))
		}
		if origin == settings.OriginClient && p.onSelect != nil {
			p.onSelect(i)
		}
	}

	if err := p.buildElements(); err != nil {
		return nil, err
	}

	p.group = settings.NewGroup()
	p.group.Add("x", p.x)
	p.group.Add("y", p.y)
	p.group.Add("color", p.color)
	p.group.Add("size", p.size)
	p.group.AddHidden("selected", p.selected)

	return p, nil
}

func (p *Plot) validateAxis(name string) error {
	if !slices.Contains(p.numeric, name) {
		return fmt.Errorf("%q is not a numeric property of this dataset", name)
	}
	return nil
}

func (p *Plot) buildElements() error {
	for part, opt := range map[string]*settings.Option[string]{
		"x":     p.x,
		"y":     p.y,
		"color": p.color,
	} {
		sel, err := p.reg.New(element.Select, elementID("plot", part, p.guid))
		if err != nil {
			return err
		}
		choices := p.numeric
		if part == "color" {
			choices = append([]string{""}, p.numeric...)
		}
		if err := sel.SetChoices(choices); err != nil {
			return err
		}
		if err := opt.Bind(sel, element.AttrValue); err != nil {
			return err
		}
	}

	sizeIn, err := p.reg.New(element.Input, elementID("plot", "size", p.guid))
	if err != nil {
		return err
	}
	if err := p.size.Bind(sizeIn, element.AttrValue); err != nil {
		return err
	}

	selectedIn, err := p.reg.New(element.Input, elementID("plot", "selected", p.guid))
	if err != nil {
		return err
	}
	if err := p.selected.Bind(selectedIn, element.AttrValue); err != nil {
		return err
	}

	current, err := p.reg.New(element.Label, elementID("plot", "current", p.guid))
	if err != nil {
		return err
	}
	return current.Set(element.AttrInnerText, "0")
}

// GUID returns the identifier embedded in this widget's element ids.
func (p *Plot) GUID() string { return p.guid }

// Settings returns the plot settings tree.
func (p *Plot) Settings() *settings.Group { return p.group }

// OnSelect registers the callback fired when a client selects a point. It is
// not fired for programmatic Select calls.
func (p *Plot) OnSelect(fn func(index int)) { p.onSelect = fn }

// Select sets the current point from program code. The selection callback is
// not invoked.
func (p *Plot) Select(index int) error {
	return p.selected.SetValue(index)
}

// Selected returns the current point index.
func (p *Plot) Selected() int { return p.selected.Value() }

// Axes returns the current x and y property names.
func (p *Plot) Axes() (x, y string) {
	return p.x.Value(), p.y.Value()
}

// Reset swaps the plot to a new dataset in place: the widget identity (and
// element subtree) survives, axis choices and selection are rebuilt.
func (p *Plot) Reset(properties map[string]dataset.Values, count int) error {
	numeric := numericNames(properties)
	if len(numeric) == 0 {
		return fmt.Errorf("cannot reset plot: no numeric properties")
	}
	if count <= 0 {
		return fmt.Errorf("cannot reset plot to %d points", count)
	}

	p.properties = properties
	p.numeric = numeric
	p.count = count

	for _, part := range []string{"x", "y", "color"} {
		sel, err := p.reg.Get(elementID("plot", part, p.guid))
		if err != nil {
			return err
		}
		choices := numeric
		if part == "color" {
			choices = append([]string{""}, numeric...)
		}
		if err := sel.SetChoices(choices); err != nil {
			return err
		}
	}

	if err := p.x.SetValue(numeric[0]); err != nil {
		return err
	}
	if err := p.y.SetValue(numeric[min(1, len(numeric)-1)]); err != nil {
		return err
	}
	if err := p.color.SetValue(""); err != nil {
		return err
	}
	return p.selected.SetValue(0)
}

// Remove unbinds all plot settings and deletes the plot's element subtree.
func (p *Plot) Remove() {
	p.group.UnbindAll()
	p.reg.RemoveMatching(p.guid)
}
