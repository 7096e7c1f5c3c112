package viz

import (
	"fmt"

	"github.com/molscope/molscope/internal/element"
	"github.com/molscope/molscope/internal/indexer"
	"github.com/molscope/molscope/internal/settings"
	"github.com/molscope/molscope/internal/widget"
)

// Visualizer owns the four widgets over the active dataset and their
// selection wiring: a client selection on the plot drives the slider, the
// viewer and the table, in that order; a client drag of the slider drives
// the plot selection, which does not notify the slider back. There are no
// other edges, so the wiring cannot re-enter itself.
type Visualizer struct {
	reg   *element.Registry
	input Input
	ix    *indexer.Indexer

	plot   *widget.Plot
	viewer *widget.Viewer
	slider *widget.Slider
	table  *widget.Table

	root *settings.Group
}

// New validates the input and builds the widgets. The four mount ids must
// already exist in the registry; a missing mount fails before any widget is
// constructed.
func New(reg *element.Registry, input Input) (*Visualizer, error) {
	if err := input.Check(); err != nil {
		return nil, fmt.Errorf("invalid visualizer input: %w", err)
	}
	for _, id := range []string{input.PlotID, input.ViewerID, input.SliderID, input.TableID} {
		if _, err := reg.Get(id); err != nil {
			return nil, err
		}
	}

	v := &Visualizer{
		reg:   reg,
		input: input,
		ix:    indexer.New(len(input.Structures), input.Environments),
	}

	var err error
	if v.plot, err = widget.NewPlot(reg, input.Properties, len(input.Structures)); err != nil {
		return nil, fmt.Errorf("building plot: %w", err)
	}
	if v.viewer, err = widget.NewViewer(reg, input.Structures); err != nil {
		return nil, fmt.Errorf("building viewer: %w", err)
	}
	if v.slider, err = widget.NewSlider(reg, len(input.Structures)); err != nil {
		return nil, fmt.Errorf("building slider: %w", err)
	}
	if v.table, err = widget.NewTable(reg, input.Properties); err != nil {
		return nil, fmt.Errorf("building table: %w", err)
	}

	v.wire()

	v.root = settings.NewGroup()
	v.root.AddGroup("plot", v.plot.Settings())
	v.root.AddGroup("viewer", v.viewer.Settings())

	return v, nil
}

func (v *Visualizer) wire() {
	v.plot.OnSelect(func(i int) {
		// Order matters: slider first, then viewer, then table.
		_ = v.slider.Update(i)
		_ = v.viewer.Show(i)
		_ = v.table.Show(i)
	})
	v.slider.OnChange(func(i int) {
		// Only the plot follows slider drags; Select does not notify the
		// slider back, so this cannot loop.
		_ = v.plot.Select(i)
	})
}

// Name returns the active dataset name.
func (v *Visualizer) Name() string { return v.input.Name }

// Input returns the active visualizer input.
func (v *Visualizer) Input() Input { return v.input }

// Plot returns the plot widget.
func (v *Visualizer) Plot() *widget.Plot { return v.plot }

// Viewer returns the viewer widget.
func (v *Visualizer) Viewer() *widget.Viewer { return v.viewer }

// Slider returns the slider widget.
func (v *Visualizer) Slider() *widget.Slider { return v.slider }

// Table returns the table widget.
func (v *Visualizer) Table() *widget.Table { return v.table }

// Select drives all four widgets to index i from program code, following the
// same order as a client selection.
func (v *Visualizer) Select(i int) error {
	if err := v.plot.Select(i); err != nil {
		return err
	}
	if err := v.slider.Update(i); err != nil {
		return err
	}
	if err := v.viewer.Show(i); err != nil {
		return err
	}
	return v.table.Show(i)
}

// SelectEnvironment resolves an atom-centered environment index to its
// structure and selects that structure. Without environments the index is
// the structure index itself.
func (v *Visualizer) SelectEnvironment(e int) error {
	structure, _, err := v.ix.Resolve(e)
	if err != nil {
		return err
	}
	return v.Select(structure)
}

// EnvironmentOf maps a structure index to its first environment index.
func (v *Visualizer) EnvironmentOf(structure int) (int, error) {
	return v.ix.FromStructure(structure)
}

// SaveSettings records the settings of all widgets as one plain tree.
func (v *Visualizer) SaveSettings() (map[string]any, error) {
	return v.root.Save()
}

// ApplySettings restores widget settings from a plain tree. Unknown keys are
// tolerated with a warning.
func (v *Visualizer) ApplySettings(tree map[string]any) error {
	return v.root.Apply(tree)
}

// ChangeDataset swaps the active dataset. The plot and viewer keep their
// identity and reset in place; the table is discarded and recreated. It must
// not be called concurrently with itself.
func (v *Visualizer) ChangeDataset(input Input) error {
	if err := input.Check(); err != nil {
		return fmt.Errorf("invalid visualizer input: %w", err)
	}

	if err := v.plot.Reset(input.Properties, len(input.Structures)); err != nil {
		return err
	}
	if err := v.viewer.Reset(input.Structures); err != nil {
		return err
	}
	if err := v.slider.Reset(len(input.Structures)); err != nil {
		return err
	}

	v.table.Remove()
	table, err := widget.NewTable(v.reg, input.Properties)
	if err != nil {
		return fmt.Errorf("rebuilding table: %w", err)
	}
	v.table = table
	v.wire()

	v.input = input
	v.ix = indexer.New(len(input.Structures), input.Environments)
	return nil
}

// Remove tears the visualizer down: all widget settings are unbound, every
// widget element subtree is deleted and the mount elements are emptied.
func (v *Visualizer) Remove() {
	v.plot.Remove()
	v.viewer.Remove()
	v.slider.Remove()
	v.table.Remove()

	for _, id := range []string{v.input.PlotID, v.input.ViewerID, v.input.SliderID, v.input.TableID} {
		if mount, err := v.reg.Get(id); err == nil {
			_ = mount.Set(element.AttrInnerText, "")
		}
	}
}
