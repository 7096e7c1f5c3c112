package widget

import (
	"fmt"
	"strconv"

	"github.com/molscope/molscope/internal/element"
	"github.com/molscope/molscope/internal/settings"
)

// Slider steps through display indices. Its value is an int Option bound to
// a range element, so client drags and programmatic updates share the same
// validated path.
type Slider struct {
	guid string
	reg  *element.Registry

	count    int
	value    *settings.Option[int]
	onChange func(index int)
}

// NewSlider builds a slider over [0, count).
func NewSlider(reg *element.Registry, count int) (*Slider, error) {
	if count <= 0 {
		return nil, fmt.Errorf("cannot build a slider over %d entries", count)
	}

	s := &Slider{
		guid:  newGUID(),
		reg:   reg,
		count: count,
	}

	s.value = settings.NewInt(0)
	s.value.Validate = func(i int) error {
		if i < 0 || i >= s.count {
			return fmt.Errorf("slider index %d out of range, have %d entries", i, s.count)
		}
		return nil
	}
	s.value.OnChange = func(i int, origin settings.Origin) {
		// Only user drags notify; programmatic updates come from the
		// selection wiring and must not loop back into it.
		if origin == settings.OriginClient && s.onChange != nil {
			s.onChange(i)
		}
	}

	rng, err := reg.New(element.Range, elementID("slider", "range", s.guid))
	if err != nil {
		return nil, err
	}
	if err := rng.Set(element.AttrMin, "0"); err != nil {
		return nil, err
	}
	if err := rng.Set(element.AttrMax, strconv.Itoa(count-1)); err != nil {
		return nil, err
	}
	if err := rng.Set(element.AttrStep, "1"); err != nil {
		return nil, err
	}
	if err := s.value.Bind(rng, element.AttrValue); err != nil {
		return nil, err
	}

	return s, nil
}

// GUID returns the identifier embedded in this widget's element ids.
func (s *Slider) GUID() string { return s.guid }

// OnChange registers the callback fired when a client drags the slider. It
// is not fired for programmatic Update calls.
func (s *Slider) OnChange(fn func(index int)) { s.onChange = fn }

// Update moves the slider from program code without notifying OnChange.
func (s *Slider) Update(index int) error {
	return s.value.SetValue(index)
}

// Value returns the current slider position.
func (s *Slider) Value() int { return s.value.Value() }

// Reset swaps the slider to a new entry count in place and rewinds to 0.
func (s *Slider) Reset(count int) error {
	if count <= 0 {
		return fmt.Errorf("cannot reset slider to %d entries", count)
	}
	s.count = count

	rng, err := s.reg.Get(elementID("slider", "range", s.guid))
	if err != nil {
		return err
	}
	if err := rng.Set(element.AttrMax, strconv.Itoa(count-1)); err != nil {
		return err
	}
	return s.value.SetValue(0)
}

// Remove unbinds the slider and deletes its element subtree.
func (s *Slider) Remove() {
	s.value.UnbindAll()
	s.reg.RemoveMatching(s.guid)
}
