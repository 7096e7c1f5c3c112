package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/molscope/molscope/internal/warnings"
)

const (
	waterXYZ   = Structure("3\n\nO 0 0 0\nH 0.76 0.59 0\nH -0.76 0.59 0\n")
	methaneXYZ = Structure("5\n\nC 0 0 0\nH 0.63 0.63 0.63\nH -0.63 -0.63 0.63\nH -0.63 0.63 -0.63\nH 0.63 -0.63 -0.63\n")
)

func validDataset() *Dataset {
	return &Dataset{
		Meta: Meta{Name: "test dataset"},
		Properties: map[string]Property{
			"energy":  {Target: TargetStructure, Values: NumberValues(-1.5, -2.25)},
			"quality": {Target: TargetStructure, Values: StringValues("good", "bad")},
		},
		Structures: []Structure{waterXYZ, methaneXYZ},
	}
}

func TestCheckValid(t *testing.T) {
	if err := validDataset().Check(); err != nil {
		t.Fatalf("valid dataset rejected: %v", err)
	}
}

func TestCheckFailsFast(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Dataset)
		message string
	}{
		{
			name:    "missing name",
			mutate:  func(d *Dataset) { d.Meta.Name = "" },
			message: "missing a name",
		},
		{
			name:    "no structures",
			mutate:  func(d *Dataset) { d.Structures = nil },
			message: "no structures",
		},
		{
			name: "empty property",
			mutate: func(d *Dataset) {
				d.Properties["empty"] = Property{Target: TargetStructure}
			},
			message: "no values",
		},
		{
			name: "length mismatch",
			mutate: func(d *Dataset) {
				d.Properties["energy"] = Property{Target: TargetStructure, Values: NumberValues(1)}
			},
			message: "1 values for 2 structures",
		},
		{
			name: "bad target",
			mutate: func(d *Dataset) {
				d.Properties["energy"] = Property{Target: "molecule", Values: NumberValues(1, 2)}
			},
			message: "invalid target",
		},
		{
			name: "atom property without environments",
			mutate: func(d *Dataset) {
				d.Properties["charge"] = Property{Target: TargetAtom, Values: NumberValues(1, 2, 3)}
			},
			message: "no environments",
		},
		{
			name: "environment out of range",
			mutate: func(d *Dataset) {
				d.Environments = []Environment{{Structure: 5, Center: 0, Cutoff: 3}}
			},
			message: "references structure 5",
		},
		{
			name: "environment center out of range",
			mutate: func(d *Dataset) {
				d.Environments = []Environment{{Structure: 0, Center: 9, Cutoff: 3}}
			},
			message: "has 3 atoms",
		},
		{
			name: "malformed structure",
			mutate: func(d *Dataset) {
				d.Structures[0] = "not an xyz block"
			},
			message: "atom count",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := validDataset()
			tc.mutate(d)
			err := d.Check()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("error %q does not contain %q", err, tc.message)
			}
		})
	}
}

func TestValuesRejectMixedTypes(t *testing.T) {
	var v Values
	err := json.Unmarshal([]byte(`[1, "two"]`), &v)
	if err == nil {
		t.Fatal("expected mixed array to fail")
	}
}

func TestValuesRoundTrip(t *testing.T) {
	var v Values
	if err := json.Unmarshal([]byte(`[1.5, 2, -3]`), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !v.IsNumeric() || v.Len() != 3 {
		t.Fatalf("got %+v, want 3 numbers", v)
	}
	if v.At(0) != "1.5" {
		t.Errorf("At(0) = %q, want %q", v.At(0), "1.5")
	}

	var s Values
	if err := json.Unmarshal([]byte(`["a", "b"]`), &s); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if s.IsNumeric() || s.At(1) != "b" {
		t.Errorf("got %+v, want string column", s)
	}
}

func TestStructureFromFrame(t *testing.T) {
	raw := `{"size": 2, "names": ["C", "O"], "x": [0, 1.2], "y": [0, 0], "z": [0, 0]}`
	var s Structure
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	n, err := s.AtomCount()
	if err != nil {
		t.Fatalf("AtomCount failed: %v", err)
	}
	if n != 2 {
		t.Errorf("got %d atoms, want 2", n)
	}
	if !strings.Contains(string(s), "O 1.2 0 0") {
		t.Errorf("unexpected XYZ output:\n%s", s)
	}
}

func TestMetaWarnsOnUnknownKeys(t *testing.T) {
	var got []string
	remove := warnings.AddHandler(func(message string) { got = append(got, message) })
	defer remove()

	var m Meta
	raw := `{"name": "x", "version": 3}`
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if m.Name != "x" {
		t.Errorf("name = %q, want %q", m.Name, "x")
	}
	if len(got) != 1 || !strings.Contains(got[0], "version") {
		t.Errorf("expected one warning about %q, got %v", "version", got)
	}
}

func TestGenerateEnvironments(t *testing.T) {
	d := validDataset()
	if err := d.GenerateEnvironments(3.5); err != nil {
		t.Fatalf("GenerateEnvironments failed: %v", err)
	}

	// 3 atoms in water + 5 in methane.
	if len(d.Environments) != 8 {
		t.Fatalf("got %d environments, want 8", len(d.Environments))
	}
	first, last := d.Environments[0], d.Environments[7]
	if first.Structure != 0 || first.Center != 0 {
		t.Errorf("first environment = %+v", first)
	}
	if last.Structure != 1 || last.Center != 4 {
		t.Errorf("last environment = %+v", last)
	}
	if first.Cutoff != 3.5 {
		t.Errorf("cutoff = %g, want 3.5", first.Cutoff)
	}
}

func TestLoadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"roundtrip.json", "roundtrip.json.gz"} {
		path := filepath.Join(dir, name)
		original := validDataset()

		if err := Write(path, original); err != nil {
			t.Fatalf("Write(%s) failed: %v", name, err)
		}
		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", name, err)
		}

		if loaded.Meta.Name != original.Meta.Name {
			t.Errorf("%s: name = %q, want %q", name, loaded.Meta.Name, original.Meta.Name)
		}
		if len(loaded.Structures) != 2 {
			t.Errorf("%s: got %d structures, want 2", name, len(loaded.Structures))
		}
		if err := loaded.Check(); err != nil {
			t.Errorf("%s: loaded dataset invalid: %v", name, err)
		}
	}
}

func TestWriteReportsFlushFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full on this platform")
	}

	// gzip holds the encoded output in its buffer until Close, so the
	// device only rejects the data during the final flush. Write must not
	// report success for the truncated file.
	path := filepath.Join(t.TempDir(), "full.json.gz")
	if err := os.Symlink("/dev/full", path); err != nil {
		t.Fatal(err)
	}

	if err := Write(path, validDataset()); err == nil {
		t.Error("expected an error writing to a full device")
	}
}

func TestWriteRejectsBadExtension(t *testing.T) {
	if err := Write(filepath.Join(t.TempDir(), "data.txt"), validDataset()); err == nil {
		t.Error("expected error for non-json path")
	}
}

func TestWriteDefaultsNameFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zeolites.json.gz")

	d := validDataset()
	d.Meta.Name = ""
	if err := Write(path, d); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Meta.Name != "zeolites" {
		t.Errorf("name = %q, want %q", loaded.Meta.Name, "zeolites")
	}
}

func TestDescriptionHTML(t *testing.T) {
	m := Meta{Description: "A **bold** dataset"}
	html, err := m.DescriptionHTML()
	if err != nil {
		t.Fatalf("DescriptionHTML failed: %v", err)
	}
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("unexpected html: %s", html)
	}

	empty, err := Meta{}.DescriptionHTML()
	if err != nil || empty != "" {
		t.Errorf("empty description should render empty, got %q, %v", empty, err)
	}
}

func TestPropertyNames(t *testing.T) {
	d := validDataset()
	names := d.PropertyNames(TargetStructure)
	if len(names) != 2 || names[0] != "energy" || names[1] != "quality" {
		t.Errorf("got %v", names)
	}
	if atom := d.PropertyNames(TargetAtom); len(atom) != 0 {
		t.Errorf("expected no atom properties, got %v", atom)
	}
}
