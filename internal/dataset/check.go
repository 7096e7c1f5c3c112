package dataset

import "fmt"

// Check verifies the structural validity of the dataset before any widget is
// built from it: metadata name, property shape and lengths, and environment
// indices. It fails fast with a descriptive error on the first violation and
// never attempts coercion or partial recovery.
func (d *Dataset) Check() error {
	if d.Meta.Name == "" {
		return fmt.Errorf("dataset is missing a name in its metadata")
	}

	if len(d.Structures) == 0 {
		return fmt.Errorf("dataset %q contains no structures", d.Meta.Name)
	}

	for i, s := range d.Structures {
		if _, err := s.AtomCount(); err != nil {
			return fmt.Errorf("structure %d: %w", i, err)
		}
	}

	for name, p := range d.Properties {
		switch p.Target {
		case TargetStructure, TargetAtom:
		default:
			return fmt.Errorf("property %q has invalid target %q, expected %q or %q",
				name, p.Target, TargetStructure, TargetAtom)
		}

		if p.Values.Len() == 0 {
			return fmt.Errorf("property %q has no values", name)
		}
		if p.Values.Numbers != nil && p.Values.Strings != nil {
			return fmt.Errorf("property %q mixes string and number values", name)
		}

		switch p.Target {
		case TargetStructure:
			if p.Values.Len() != len(d.Structures) {
				return fmt.Errorf("property %q has %d values for %d structures",
					name, p.Values.Len(), len(d.Structures))
			}
		case TargetAtom:
			if len(d.Environments) == 0 {
				return fmt.Errorf("property %q targets atoms but the dataset has no environments", name)
			}
			if p.Values.Len() != len(d.Environments) {
				return fmt.Errorf("property %q has %d values for %d environments",
					name, p.Values.Len(), len(d.Environments))
			}
		}
	}

	for i, env := range d.Environments {
		if env.Structure < 0 || env.Structure >= len(d.Structures) {
			return fmt.Errorf("environment %d references structure %d, dataset has %d",
				i, env.Structure, len(d.Structures))
		}
		n, err := d.Structures[env.Structure].AtomCount()
		if err != nil {
			return fmt.Errorf("environment %d: %w", i, err)
		}
		if env.Center < 0 || env.Center >= n {
			return fmt.Errorf("environment %d centers on atom %d, structure %d has %d atoms",
				i, env.Center, env.Structure, n)
		}
		if env.Cutoff <= 0 {
			return fmt.Errorf("environment %d has non-positive cutoff %g", i, env.Cutoff)
		}
	}

	return nil
}

// GenerateEnvironments replaces the dataset environments with one per atom,
// all using the given cutoff.
func (d *Dataset) GenerateEnvironments(cutoff float64) error {
	if cutoff <= 0 {
		return fmt.Errorf("cutoff must be positive, got %g", cutoff)
	}

	var envs []Environment
	for i, s := range d.Structures {
		n, err := s.AtomCount()
		if err != nil {
			return fmt.Errorf("structure %d: %w", i, err)
		}
		for center := 0; center < n; center++ {
			envs = append(envs, Environment{Structure: i, Center: center, Cutoff: cutoff})
		}
	}
	d.Environments = envs
	return nil
}
