// Package dataset defines the molscope input format: per-structure (or
// per-atom) properties next to the structures themselves, plus optional
// dataset metadata and atom-centered environments. The JSON layout follows
// the chemiscope input convention.
package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/molscope/molscope/internal/warnings"
)

// Property targets.
const (
	TargetStructure = "structure"
	TargetAtom      = "atom"
)

// Meta describes a dataset. Description may contain markdown.
type Meta struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	References  []string `json:"references,omitempty"`
}

// UnmarshalJSON accepts the known metadata keys and reports any others on
// the warning channel instead of failing.
func (m *Meta) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		var err error
		switch key {
		case "name":
			err = json.Unmarshal(value, &m.Name)
		case "description":
			err = json.Unmarshal(value, &m.Description)
		case "authors":
			err = json.Unmarshal(value, &m.Authors)
		case "references":
			err = json.Unmarshal(value, &m.References)
		default:
			warnings.Warn("ignoring unexpected metadata key %q", key)
		}
		if err != nil {
			return fmt.Errorf("metadata key %q: %w", key, err)
		}
	}
	return nil
}

// Values is one property column, holding either numbers or strings but never
// a mix. The zero value is empty.
type Values struct {
	Numbers []float64
	Strings []string
}

// NumberValues builds a numeric column.
func NumberValues(v ...float64) Values { return Values{Numbers: v} }

// StringValues builds a string column.
func StringValues(v ...string) Values { return Values{Strings: v} }

// IsNumeric reports whether the column holds numbers.
func (v Values) IsNumeric() bool { return v.Numbers != nil }

// Len returns the number of entries in the column.
func (v Values) Len() int {
	if v.IsNumeric() {
		return len(v.Numbers)
	}
	return len(v.Strings)
}

// At returns the display form of the i-th entry.
func (v Values) At(i int) string {
	if v.IsNumeric() {
		return strconv.FormatFloat(v.Numbers[i], 'g', -1, 64)
	}
	return v.Strings[i]
}

// Number returns the i-th entry of a numeric column.
func (v Values) Number(i int) float64 { return v.Numbers[i] }

// UnmarshalJSON decodes a JSON array of uniformly typed elements. A mixed
// array fails.
func (v *Values) UnmarshalJSON(b []byte) error {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		*v = Values{}
		return nil
	}

	switch raw[0].(type) {
	case float64:
		numbers := make([]float64, len(raw))
		for i, e := range raw {
			n, ok := e.(float64)
			if !ok {
				return fmt.Errorf("property values must be all strings or all numbers, element %d is %T", i, e)
			}
			numbers[i] = n
		}
		*v = Values{Numbers: numbers}
	case string:
		strs := make([]string, len(raw))
		for i, e := range raw {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("property values must be all strings or all numbers, element %d is %T", i, e)
			}
			strs[i] = s
		}
		*v = Values{Strings: strs}
	default:
		return fmt.Errorf("unsupported property value of type %T", raw[0])
	}
	return nil
}

// MarshalJSON emits the column as a plain JSON array.
func (v Values) MarshalJSON() ([]byte, error) {
	if v.IsNumeric() {
		return json.Marshal(v.Numbers)
	}
	if v.Strings == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Strings)
}

// Property is one named column of values attached to structures or atoms.
type Property struct {
	Target      string `json:"target"`
	Values      Values `json:"values"`
	Units       string `json:"units,omitempty"`
	Description string `json:"description,omitempty"`
}

// Environment is one atom-centered environment.
type Environment struct {
	Structure int     `json:"structure"`
	Center    int     `json:"center"`
	Cutoff    float64 `json:"cutoff"`
}

// Structure is an XYZ-format text block: atom count on the first line, a
// comment line, then one "name x y z" line per atom.
type Structure string

// Frame is the expanded structure form found in chemiscope input files.
type Frame struct {
	Size  int       `json:"size"`
	Names []string  `json:"names"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	Z     []float64 `json:"z"`
	Cell  []float64 `json:"cell,omitempty"`
}

// XYZ renders the frame as an XYZ text block. The cell, when present, goes
// on the comment line as Lattice="..." in extended XYZ form.
func (f Frame) XYZ() (Structure, error) {
	if f.Size != len(f.Names) || f.Size != len(f.X) || f.Size != len(f.Y) || f.Size != len(f.Z) {
		return "", fmt.Errorf("frame size %d does not match its arrays (%d names, %d/%d/%d coordinates)",
			f.Size, len(f.Names), len(f.X), len(f.Y), len(f.Z))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d\n", f.Size)
	if len(f.Cell) == 9 {
		sb.WriteString(`Lattice="`)
		for i, c := range f.Cell {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
		}
		sb.WriteString(`"`)
	}
	sb.WriteByte('\n')
	for i := 0; i < f.Size; i++ {
		fmt.Fprintf(&sb, "%s %s %s %s\n", f.Names[i],
			strconv.FormatFloat(f.X[i], 'g', -1, 64),
			strconv.FormatFloat(f.Y[i], 'g', -1, 64),
			strconv.FormatFloat(f.Z[i], 'g', -1, 64))
	}
	return Structure(sb.String()), nil
}

// UnmarshalJSON accepts either an XYZ string or an expanded frame object,
// normalizing the latter to XYZ text.
func (s *Structure) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err == nil {
		*s = Structure(text)
		return nil
	}

	var frame Frame
	if err := json.Unmarshal(b, &frame); err != nil {
		return fmt.Errorf("structure must be an XYZ string or a frame object: %w", err)
	}
	xyz, err := frame.XYZ()
	if err != nil {
		return err
	}
	*s = xyz
	return nil
}

// AtomCount reads the atom count from the first line of the XYZ block.
func (s Structure) AtomCount() (int, error) {
	text := strings.TrimLeft(string(s), " \t\n")
	line, _, _ := strings.Cut(text, "\n")
	count, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || count < 0 {
		return 0, fmt.Errorf("structure does not start with an atom count: %q", line)
	}
	return count, nil
}

// Dataset is a full molscope input: metadata, property columns, structures
// and optional environments.
type Dataset struct {
	Meta         Meta                `json:"meta"`
	Properties   map[string]Property `json:"properties"`
	Structures   []Structure         `json:"structures"`
	Environments []Environment       `json:"environments,omitempty"`
}

// PropertyNames returns the property names with the given target, sorted.
func (d *Dataset) PropertyNames(target string) []string {
	var names []string
	for name, p := range d.Properties {
		if p.Target == target {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
