// Package viz composes the four display widgets over one dataset and wires
// their selection notifications together.
package viz

import (
	"fmt"

	"github.com/molscope/molscope/internal/dataset"
)

// Input is the top-level visualizer contract: the dataset content to display
// plus the element ids of the four widget mounts and the path the dataset
// was loaded from. It is validated structurally before any widget is built.
type Input struct {
	Name         string
	Properties   map[string]dataset.Values
	Structures   []dataset.Structure
	Environments []dataset.Environment

	PlotID   string
	ViewerID string
	SliderID string
	TableID  string
	DataPath string
}

// InputFromDataset builds a visualizer input from a loaded dataset, keeping
// the structure-targeted property columns.
func InputFromDataset(ds *dataset.Dataset, plotID, viewerID, sliderID, tableID, path string) Input {
	properties := make(map[string]dataset.Values)
	for name, p := range ds.Properties {
		if p.Target == dataset.TargetStructure {
			properties[name] = p.Values
		}
	}
	return Input{
		Name:         ds.Meta.Name,
		Properties:   properties,
		Structures:   ds.Structures,
		Environments: ds.Environments,
		PlotID:       plotID,
		ViewerID:     viewerID,
		SliderID:     sliderID,
		TableID:      tableID,
		DataPath:     path,
	}
}

// Check validates the input shape, failing fast with a descriptive error on
// the first violated constraint. It does not coerce or partially recover.
func (in *Input) Check() error {
	if in.Name == "" {
		return fmt.Errorf("input is missing a name")
	}

	for name, values := range in.Properties {
		if values.Len() == 0 {
			return fmt.Errorf("property %q has no values", name)
		}
		if values.Numbers != nil && values.Strings != nil {
			return fmt.Errorf("property %q mixes string and number values", name)
		}
	}

	if len(in.Structures) == 0 {
		return fmt.Errorf("input contains no structures")
	}

	for name, values := range in.Properties {
		if values.Len() != len(in.Structures) {
			return fmt.Errorf("property %q has %d values for %d structures",
				name, values.Len(), len(in.Structures))
		}
	}

	for i, env := range in.Environments {
		if env.Structure < 0 || env.Structure >= len(in.Structures) {
			return fmt.Errorf("environment %d references structure %d, have %d structures",
				i, env.Structure, len(in.Structures))
		}
	}

	for _, id := range []struct{ part, id string }{
		{"plot", in.PlotID},
		{"viewer", in.ViewerID},
		{"slider", in.SliderID},
		{"table", in.TableID},
	} {
		if id.id == "" {
			return fmt.Errorf("input is missing the %s mount id", id.part)
		}
	}
	if in.DataPath == "" {
		return fmt.Errorf("input is missing the dataset path")
	}
	return nil
}
