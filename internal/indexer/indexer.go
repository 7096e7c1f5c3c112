// Package indexer maps flat environment indices to display coordinates. A
// dataset with atom-centered environments is navigated by environment index;
// the widgets need the (structure, center) pair behind it, and the reverse
// lookup when a structure is selected directly.
package indexer

import (
	"fmt"

	"github.com/molscope/molscope/internal/dataset"
)

// Indexer resolves environment indices for one dataset. Without
// environments it degenerates to the identity mapping over structures.
type Indexer struct {
	structures int
	envs       []dataset.Environment
	// first environment index for each structure, -1 when none
	firstEnv []int
}

// New builds an indexer over the given structure count and environment
// list. An empty environment list gives the identity mapping.
func New(structures int, envs []dataset.Environment) *Indexer {
	ix := &Indexer{
		structures: structures,
		envs:       envs,
		firstEnv:   make([]int, structures),
	}
	for i := range ix.firstEnv {
		ix.firstEnv[i] = -1
	}
	for i, env := range envs {
		if env.Structure >= 0 && env.Structure < len(ix.firstEnv) && ix.firstEnv[env.Structure] < 0 {
			ix.firstEnv[env.Structure] = i
		}
	}
	return ix
}

// Count returns the number of display indices: environments when present,
// structures otherwise.
func (ix *Indexer) Count() int {
	if len(ix.envs) > 0 {
		return len(ix.envs)
	}
	return ix.structures
}

// Resolve maps a flat display index to its (structure, center) pair. Without
// environments the center is always 0.
func (ix *Indexer) Resolve(i int) (structure, center int, err error) {
	if i < 0 || i >= ix.Count() {
		return 0, 0, fmt.Errorf("index %d out of range, have %d entries", i, ix.Count())
	}
	if len(ix.envs) == 0 {
		return i, 0, nil
	}
	env := ix.envs[i]
	return env.Structure, env.Center, nil
}

// FromStructure returns the first display index belonging to the given
// structure, which is the structure index itself when there are no
// environments.
func (ix *Indexer) FromStructure(structure int) (int, error) {
	if structure < 0 || structure >= ix.structures {
		return 0, fmt.Errorf("structure %d out of range, have %d structures", structure, ix.structures)
	}
	if len(ix.envs) == 0 {
		return structure, nil
	}
	if first := ix.firstEnv[structure]; first >= 0 {
		return first, nil
	}
	return 0, fmt.Errorf("structure %d has no environments", structure)
}
