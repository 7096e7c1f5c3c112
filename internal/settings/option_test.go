package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molscope/molscope/internal/element"
)

func TestSetValuePushesToBoundElement(t *testing.T) {
	reg := element.NewRegistry()
	in := reg.MustNew(element.Input, "field")

	opt := NewInt(5)
	require.NoError(t, opt.Bind(in, element.AttrValue))

	// Binding pushes the current value immediately.
	got, err := in.Get(element.AttrValue)
	require.NoError(t, err)
	assert.Equal(t, "5", got)

	require.NoError(t, opt.SetValue(42))
	got, err = in.Get(element.AttrValue)
	require.NoError(t, err)
	assert.Equal(t, "42", got)
}

func TestClientChangeUpdatesValue(t *testing.T) {
	reg := element.NewRegistry()
	in := reg.MustNew(element.Input, "field")

	opt := NewFloat(1.0)
	var lastOrigin Origin
	changes := 0
	opt.OnChange = func(v float64, origin Origin) {
		lastOrigin = origin
		changes++
	}
	require.NoError(t, opt.Bind(in, element.AttrValue))

	require.NoError(t, reg.Dispatch("field", element.AttrValue, "2.5"))

	assert.Equal(t, 2.5, opt.Value())
	assert.Equal(t, OriginClient, lastOrigin)
	assert.Equal(t, 1, changes)

	require.NoError(t, opt.SetValue(3))
	assert.Equal(t, OriginCode, lastOrigin)
	assert.Equal(t, 2, changes)
}

func TestUnbindAllStopsUpdates(t *testing.T) {
	reg := element.NewRegistry()
	in := reg.MustNew(element.Input, "field")

	opt := NewString("initial")
	require.NoError(t, opt.Bind(in, element.AttrValue))

	opt.UnbindAll()
	require.NoError(t, reg.Dispatch("field", element.AttrValue, "typed after unbind"))
	assert.Equal(t, "initial", opt.Value())

	// Idempotent.
	opt.UnbindAll()

	// A later SetValue no longer touches the element either.
	require.NoError(t, opt.SetValue("changed"))
	got, err := in.Get(element.AttrValue)
	require.NoError(t, err)
	assert.Equal(t, "typed after unbind", got)
}

func TestValidationFailureLeavesStateIntact(t *testing.T) {
	reg := element.NewRegistry()
	in := reg.MustNew(element.Input, "field")

	opt := NewInt(3)
	opt.Validate = func(v int) error {
		if v < 0 {
			return errors.New("must not be negative")
		}
		return nil
	}
	changes := 0
	opt.OnChange = func(int, Origin) { changes++ }
	require.NoError(t, opt.Bind(in, element.AttrValue))

	err := opt.SetValue(-1)
	require.Error(t, err)
	assert.Equal(t, 3, opt.Value())
	assert.Equal(t, 0, changes)

	// The bound element still shows the prior value.
	got, getErr := in.Get(element.AttrValue)
	require.NoError(t, getErr)
	assert.Equal(t, "3", got)
}

func TestBoolParsingIsStrict(t *testing.T) {
	opt := NewBool(true)

	require.NoError(t, opt.applyAny("false"))
	assert.False(t, opt.Value())

	for _, bad := range []string{"yes", "1", "TRUE", "False", ""} {
		err := opt.applyAny(bad)
		require.Error(t, err, "input %q", bad)
		assert.False(t, opt.Value(), "value changed by invalid input %q", bad)
	}
}

func TestIntPrefixLeniency(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{"3abc", 3, false},
		{"-12px", -12, false},
		{"+7", 7, false},
		{" 42 ", 42, false},
		{"abc", 0, true},
		{"", 0, true},
		{"-", 0, true},
	}
	for _, tc := range tests {
		got, err := parseIntPrefix(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestFloatPrefixLeniency(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"2.5", 2.5, false},
		{"2.5axis", 2.5, false},
		{"1e3", 1000, false},
		{"-0.25", -0.25, false},
		{"nope", 0, true},
		{"", 0, true},
	}
	for _, tc := range tests {
		got, err := parseFloatPrefix(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestBindUnknownAttributeFails(t *testing.T) {
	reg := element.NewRegistry()
	label := reg.MustNew(element.Label, "caption")

	opt := NewString("x")
	assert.Error(t, opt.Bind(label, element.AttrChecked))
	assert.Empty(t, opt.bindings)
}

func TestBindIDMissingElement(t *testing.T) {
	reg := element.NewRegistry()
	opt := NewString("x")

	err := opt.BindID(reg, "does-not-exist", element.AttrValue)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestCheckboxBinding(t *testing.T) {
	reg := element.NewRegistry()
	cb := reg.MustNew(element.Checkbox, "flag")

	opt := NewBool(false)
	require.NoError(t, opt.Bind(cb, element.AttrChecked))

	require.NoError(t, opt.SetValue(true))
	got, err := cb.Get(element.AttrChecked)
	require.NoError(t, err)
	assert.Equal(t, "true", got)

	require.NoError(t, reg.Dispatch("flag", element.AttrChecked, "false"))
	assert.False(t, opt.Value())
}

func TestEnabledSemantics(t *testing.T) {
	reg := element.NewRegistry()
	a := reg.MustNew(element.Input, "a")
	b := reg.MustNew(element.Input, "b")

	opt := NewString("x")
	require.NoError(t, opt.Bind(a, element.AttrValue))
	require.NoError(t, opt.Bind(b, element.AttrValue))

	assert.True(t, opt.Enabled(false))
	assert.True(t, opt.Enabled(true))

	a.SetDisabled(true)
	assert.True(t, opt.Enabled(false), "one element still enabled")
	assert.False(t, opt.Enabled(true), "not all elements enabled")
	assert.True(t, opt.Disabled(false), "one element disabled")
	assert.False(t, opt.Disabled(true), "not all elements disabled")

	opt.Disable()
	assert.False(t, opt.Enabled(false))
	assert.True(t, opt.Disabled(true))

	opt.Enable()
	assert.True(t, opt.Enabled(true))
}

func TestMultipleBoundElementsStayInSync(t *testing.T) {
	reg := element.NewRegistry()
	in := reg.MustNew(element.Input, "in")
	rng := reg.MustNew(element.Range, "rng")

	opt := NewInt(1)
	require.NoError(t, opt.Bind(in, element.AttrValue))
	require.NoError(t, opt.Bind(rng, element.AttrValue))

	require.NoError(t, reg.Dispatch("rng", element.AttrValue, "9"))

	assert.Equal(t, 9, opt.Value())
	got, err := in.Get(element.AttrValue)
	require.NoError(t, err)
	assert.Equal(t, "9", got, "sibling element follows client change")
}
