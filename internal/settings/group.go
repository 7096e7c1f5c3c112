package settings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/molscope/molscope/internal/warnings"
)

// maxDepth bounds settings tree traversal. A deeper tree is assumed to be a
// construction bug rather than a legitimate layout.
const maxDepth = 10

// Group is a tree of Options supporting bulk save and restore. Children are
// registered explicitly, in order, under unique names; a child registered as
// hidden participates in bindings as usual but is excluded from Save and
// Apply. The saved tree mirrors the registration nesting.
type Group struct {
	children []groupChild
	index    map[string]int
}

type groupChild struct {
	name   string
	opt    Value
	group  *Group
	hidden bool
}

// NewGroup returns an empty settings group.
func NewGroup() *Group {
	return &Group{index: make(map[string]int)}
}

func (g *Group) register(c groupChild) {
	if c.name == "" {
		panic("settings: child name must not be empty")
	}
	if _, exists := g.index[c.name]; exists {
		panic(fmt.Sprintf("settings: duplicate child %q", c.name))
	}
	g.index[c.name] = len(g.children)
	g.children = append(g.children, c)
}

// Add registers an Option under the given name.
func (g *Group) Add(name string, opt Value) {
	g.register(groupChild{name: name, opt: opt})
}

// AddHidden registers an Option excluded from Save and Apply.
func (g *Group) AddHidden(name string, opt Value) {
	g.register(groupChild{name: name, opt: opt, hidden: true})
}

// AddGroup registers a nested group under the given name.
func (g *Group) AddGroup(name string, sub *Group) {
	g.register(groupChild{name: name, group: sub})
}

// Child returns the Option registered under name, or nil.
func (g *Group) Child(name string) Value {
	if i, ok := g.index[name]; ok {
		return g.children[i].opt
	}
	return nil
}

// Sub returns the nested group registered under name, or nil.
func (g *Group) Sub(name string) *Group {
	if i, ok := g.index[name]; ok {
		return g.children[i].group
	}
	return nil
}

// Save records the current value of every visible Option into a freshly
// built plain tree whose shape mirrors the registration nesting.
func (g *Group) Save() (map[string]any, error) {
	return g.save(1)
}

func (g *Group) save(depth int) (map[string]any, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("settings tree is deeper than %d levels", maxDepth)
	}

	out := make(map[string]any)
	for _, c := range g.children {
		if c.hidden {
			continue
		}
		if c.group != nil {
			sub, err := c.group.save(depth + 1)
			if err != nil {
				return nil, err
			}
			out[c.name] = sub
			continue
		}
		out[c.name] = c.opt.save()
	}
	return out, nil
}

// Apply assigns values from the tree to matching Options, routing each
// assignment through the option's validated update path with a code origin.
// The input is never modified. Keys with no matching option are tolerated and
// reported once, as a single warning listing every unused key; an invalid
// value for a matching option aborts Apply with an error, leaving that option
// and all options not yet visited unchanged.
func (g *Group) Apply(tree map[string]any) error {
	remaining := deepCopy(tree)
	if err := g.apply(remaining, 1); err != nil {
		return err
	}

	if len(remaining) > 0 {
		var unused []string
		collectKeys(remaining, "", &unused)
		sort.Strings(unused)
		warnings.Warn("ignored unknown settings: %s", strings.Join(unused, ", "))
	}
	return nil
}

func (g *Group) apply(tree map[string]any, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("settings tree is deeper than %d levels", maxDepth)
	}

	for _, c := range g.children {
		if c.hidden {
			continue
		}
		v, ok := tree[c.name]
		if !ok {
			continue
		}

		if c.group != nil {
			sub, ok := v.(map[string]any)
			if !ok {
				// Left in the tree, reported as unused below.
				continue
			}
			if err := c.group.apply(sub, depth+1); err != nil {
				return err
			}
			if len(sub) == 0 {
				delete(tree, c.name)
			}
			continue
		}

		if err := c.opt.applyAny(v); err != nil {
			return fmt.Errorf("setting %q: %w", c.name, err)
		}
		delete(tree, c.name)
	}
	return nil
}

// UnbindAll unbinds every Option in the tree, hidden ones included.
func (g *Group) UnbindAll() {
	for _, c := range g.children {
		if c.group != nil {
			c.group.UnbindAll()
			continue
		}
		c.opt.UnbindAll()
	}
}

func deepCopy(tree map[string]any) map[string]any {
	out := make(map[string]any, len(tree))
	for k, v := range tree {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopy(sub)
			continue
		}
		out[k] = v
	}
	return out
}

func collectKeys(tree map[string]any, prefix string, out *[]string) {
	for k, v := range tree {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok && len(sub) > 0 {
			collectKeys(sub, path, out)
			continue
		}
		*out = append(*out, path)
	}
}
